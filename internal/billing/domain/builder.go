package billing

// BuildStatement resolves every invoice line against the catalog in order.
// The first failure aborts the whole statement.
func BuildStatement(invoice Invoice, plays Catalog) (*Statement, error) {
	performances := make([]Performance, 0, len(invoice.Performances))
	for _, line := range invoice.Performances {
		play, err := plays.Lookup(line.PlayID)
		if err != nil {
			return nil, err
		}
		genre, err := ParseGenre(play.Type)
		if err != nil {
			return nil, err
		}
		perf, err := NewPerformance(play.Name, genre, line.Audience)
		if err != nil {
			return nil, err
		}
		performances = append(performances, perf)
	}
	return NewStatement(invoice.Customer, performances), nil
}

// RenderStatement builds the statement and returns its text.
func RenderStatement(invoice Invoice, plays Catalog) (string, error) {
	stmt, err := BuildStatement(invoice, plays)
	if err != nil {
		return "", err
	}
	return stmt.Text(), nil
}
