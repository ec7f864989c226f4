package billing

import "fmt"

// Genre identifies the pricing rule a play is billed under.
type Genre string

const (
	GenreComedy  Genre = "comedy"
	GenreTragedy Genre = "tragedy"
)

// ParseGenre validates a play type tag.
func ParseGenre(value string) (Genre, error) {
	switch Genre(value) {
	case GenreComedy, GenreTragedy:
		return Genre(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGenre, value)
	}
}
