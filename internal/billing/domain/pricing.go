package billing

import "fmt"

// PricingRule prices a single performance from its audience size.
// Prices are in cents. Audience is expected in [0, MaxAudience].
type PricingRule interface {
	Price(audience int) int64
	VolumeCredits(audience int) int64
}

type comedyRule struct{}

func (comedyRule) Price(audience int) int64 {
	a := int64(audience)
	price := 30000 + 300*a
	if a > 20 {
		price += 10000 + 500*(a-20)
	}
	return price
}

// Comedies earn an extra credit for every five attendees.
func (comedyRule) VolumeCredits(audience int) int64 {
	return baseVolumeCredits(audience) + int64(audience/5)
}

type tragedyRule struct{}

func (tragedyRule) Price(audience int) int64 {
	a := int64(audience)
	price := int64(40000)
	if a > 30 {
		price += 1000 * (a - 30)
	}
	return price
}

func (tragedyRule) VolumeCredits(audience int) int64 {
	return baseVolumeCredits(audience)
}

func baseVolumeCredits(audience int) int64 {
	if audience <= 30 {
		return 0
	}
	return int64(audience - 30)
}

// RuleFor returns the pricing rule for a genre.
func RuleFor(genre Genre) (PricingRule, error) {
	switch genre {
	case GenreComedy:
		return comedyRule{}, nil
	case GenreTragedy:
		return tragedyRule{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGenre, string(genre))
	}
}
