package billing

import "fmt"

// MaxAudience bounds the seat count of one performance. Prices and credits of
// any number of in-range performances stay well inside int64.
const MaxAudience = 1_000_000

// Performance is one priced line of a statement.
type Performance struct {
	name     string
	genre    Genre
	audience int
	rule     PricingRule
}

// NewPerformance binds a play to its audience and resolves the pricing rule.
func NewPerformance(name string, genre Genre, audience int) (Performance, error) {
	if audience < 0 || audience > MaxAudience {
		return Performance{}, fmt.Errorf("%w: %d for %q", ErrInvalidAudience, audience, name)
	}
	rule, err := RuleFor(genre)
	if err != nil {
		return Performance{}, err
	}
	return Performance{name: name, genre: genre, audience: audience, rule: rule}, nil
}

// Name returns the play name.
func (p Performance) Name() string { return p.name }

// Genre returns the play genre.
func (p Performance) Genre() Genre { return p.genre }

// Audience returns the seat count.
func (p Performance) Audience() int { return p.audience }

// Price returns the performance price in cents.
func (p Performance) Price() int64 {
	if p.rule == nil {
		return 0
	}
	return p.rule.Price(p.audience)
}

// VolumeCredits returns the loyalty credits earned by the performance.
func (p Performance) VolumeCredits() int64 {
	if p.rule == nil {
		return 0
	}
	return p.rule.VolumeCredits(p.audience)
}
