package billing

import (
	"fmt"
	"strings"
)

// Statement aggregates the performances billed to one customer.
// Totals and text are derived on every call.
type Statement struct {
	customer     string
	performances []Performance
}

// StatementLine is the derived view of one performance.
type StatementLine struct {
	Position      int    `json:"position"`
	PlayName      string `json:"play_name"`
	Genre         Genre  `json:"genre"`
	Audience      int    `json:"audience"`
	Amount        int64  `json:"amount"`
	VolumeCredits int64  `json:"volume_credits"`
}

// NewStatement constructs a statement over a copy of performances.
func NewStatement(customer string, performances []Performance) *Statement {
	return &Statement{
		customer:     customer,
		performances: append([]Performance(nil), performances...),
	}
}

// Customer returns the customer name.
func (s *Statement) Customer() string { return s.customer }

// Performances returns a copy of the performances in billing order.
func (s *Statement) Performances() []Performance {
	return append([]Performance(nil), s.performances...)
}

// TotalPrice sums performance prices in cents.
func (s *Statement) TotalPrice() int64 {
	var total int64
	for _, perf := range s.performances {
		total += perf.Price()
	}
	return total
}

// TotalVolumeCredits sums performance credits.
func (s *Statement) TotalVolumeCredits() int64 {
	var total int64
	for _, perf := range s.performances {
		total += perf.VolumeCredits()
	}
	return total
}

// Lines returns one line per performance in billing order.
func (s *Statement) Lines() []StatementLine {
	lines := make([]StatementLine, 0, len(s.performances))
	for i, perf := range s.performances {
		lines = append(lines, StatementLine{
			Position:      i + 1,
			PlayName:      perf.Name(),
			Genre:         perf.Genre(),
			Audience:      perf.Audience(),
			Amount:        perf.Price(),
			VolumeCredits: perf.VolumeCredits(),
		})
	}
	return lines
}

// Text renders the plain-text statement.
func (s *Statement) Text() string {
	lines := make([]string, 0, len(s.performances)+3)
	lines = append(lines, fmt.Sprintf("Statement for %s", s.customer))
	for _, perf := range s.performances {
		lines = append(lines, fmt.Sprintf(" %s: %s (%d seats)", perf.Name(), FormatUSD(perf.Price()), perf.Audience()))
	}
	lines = append(lines,
		fmt.Sprintf("Amount owed is %s", FormatUSD(s.TotalPrice())),
		fmt.Sprintf("You earned %d credits", s.TotalVolumeCredits()),
	)
	return strings.Join(lines, "\n") + "\n"
}
