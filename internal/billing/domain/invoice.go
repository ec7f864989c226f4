package billing

import "fmt"

// Play is catalog reference data for a play.
type Play struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// Catalog maps play ids to plays.
type Catalog map[string]Play

// Lookup resolves a play id.
func (c Catalog) Lookup(playID string) (Play, error) {
	play, ok := c[playID]
	if !ok {
		return Play{}, fmt.Errorf("%w: %q", ErrUnknownPlay, playID)
	}
	return play, nil
}

// InvoiceLine is one requested performance.
type InvoiceLine struct {
	PlayID   string `json:"playID" yaml:"playID"`
	Audience int    `json:"audience" yaml:"audience"`
}

// Invoice is a customer's list of performances.
type Invoice struct {
	Customer     string        `json:"customer" yaml:"customer"`
	Performances []InvoiceLine `json:"performances" yaml:"performances"`
}
