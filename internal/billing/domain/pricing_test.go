package billing

import (
	"errors"
	"testing"
)

func TestComedyPrice(t *testing.T) {
	cases := []struct {
		audience int
		want     int64
	}{
		{0, 30000},
		{5, 31500},
		{20, 36000},
		{21, 46800},
		{35, 58000},
	}
	rule, err := RuleFor(GenreComedy)
	if err != nil {
		t.Fatalf("rule for comedy: %v", err)
	}
	for _, tc := range cases {
		if got := rule.Price(tc.audience); got != tc.want {
			t.Fatalf("comedy price(%d) = %d, want %d", tc.audience, got, tc.want)
		}
	}
}

func TestComedyPriceMonotonic(t *testing.T) {
	rule, _ := RuleFor(GenreComedy)
	prev := rule.Price(0)
	for a := 1; a <= 200; a++ {
		price := rule.Price(a)
		if price < prev {
			t.Fatalf("comedy price decreased at audience %d: %d < %d", a, price, prev)
		}
		prev = price
	}
}

func TestTragedyPrice(t *testing.T) {
	cases := []struct {
		audience int
		want     int64
	}{
		{0, 40000},
		{30, 40000},
		{31, 41000},
		{40, 50000},
	}
	rule, err := RuleFor(GenreTragedy)
	if err != nil {
		t.Fatalf("rule for tragedy: %v", err)
	}
	for _, tc := range cases {
		if got := rule.Price(tc.audience); got != tc.want {
			t.Fatalf("tragedy price(%d) = %d, want %d", tc.audience, got, tc.want)
		}
	}
}

func TestVolumeCredits(t *testing.T) {
	comedy, _ := RuleFor(GenreComedy)
	tragedy, _ := RuleFor(GenreTragedy)

	if got := baseVolumeCredits(30); got != 0 {
		t.Fatalf("base credits(30) = %d, want 0", got)
	}
	if got := baseVolumeCredits(0); got != 0 {
		t.Fatalf("base credits(0) = %d, want 0", got)
	}
	if got := tragedy.VolumeCredits(30); got != 0 {
		t.Fatalf("tragedy credits(30) = %d, want 0", got)
	}
	if got := comedy.VolumeCredits(30); got != 6 {
		t.Fatalf("comedy credits(30) = %d, want 6", got)
	}
	if got := comedy.VolumeCredits(35); got != 12 {
		t.Fatalf("comedy credits(35) = %d, want 12", got)
	}
	if got := tragedy.VolumeCredits(35); got != 5 {
		t.Fatalf("tragedy credits(35) = %d, want 5", got)
	}
	if got := comedy.VolumeCredits(4); got != 0 {
		t.Fatalf("comedy credits(4) = %d, want 0", got)
	}
}

func TestRuleForUnknownGenre(t *testing.T) {
	if _, err := RuleFor(Genre("history")); !errors.Is(err, ErrUnknownGenre) {
		t.Fatalf("expected ErrUnknownGenre, got %v", err)
	}
	if _, err := ParseGenre("pastoral"); !errors.Is(err, ErrUnknownGenre) {
		t.Fatalf("expected ErrUnknownGenre, got %v", err)
	}
	if genre, err := ParseGenre("tragedy"); err != nil || genre != GenreTragedy {
		t.Fatalf("parse tragedy: genre=%q err=%v", genre, err)
	}
}

func TestNewPerformance(t *testing.T) {
	perf, err := NewPerformance("Othello", GenreTragedy, 40)
	if err != nil {
		t.Fatalf("new performance: %v", err)
	}
	if perf.Price() != 50000 || perf.VolumeCredits() != 10 {
		t.Fatalf("unexpected performance values: price=%d credits=%d", perf.Price(), perf.VolumeCredits())
	}
	if _, err := NewPerformance("Othello", GenreTragedy, -1); !errors.Is(err, ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience, got %v", err)
	}
	if _, err := NewPerformance("Othello", GenreTragedy, MaxAudience+1); !errors.Is(err, ErrInvalidAudience) {
		t.Fatalf("expected ErrInvalidAudience above the seat limit, got %v", err)
	}
	if _, err := NewPerformance("Othello", Genre("opera"), 10); !errors.Is(err, ErrUnknownGenre) {
		t.Fatalf("expected ErrUnknownGenre, got %v", err)
	}
}

func TestPriceAndCreditsAtSeatLimit(t *testing.T) {
	comedy, err := NewPerformance("As You Like It", GenreComedy, MaxAudience)
	if err != nil {
		t.Fatalf("comedy at limit: %v", err)
	}
	below, err := NewPerformance("As You Like It", GenreComedy, MaxAudience-1)
	if err != nil {
		t.Fatalf("comedy below limit: %v", err)
	}
	if comedy.Price() < below.Price() {
		t.Fatalf("comedy price decreased at limit: %d < %d", comedy.Price(), below.Price())
	}
	if comedy.Price() <= 0 || comedy.VolumeCredits() <= 0 {
		t.Fatalf("unexpected comedy values at limit: price=%d credits=%d", comedy.Price(), comedy.VolumeCredits())
	}
	tragedy, err := NewPerformance("Hamlet", GenreTragedy, MaxAudience)
	if err != nil {
		t.Fatalf("tragedy at limit: %v", err)
	}
	if want := int64(40000 + 1000*(MaxAudience-30)); tragedy.Price() != want {
		t.Fatalf("tragedy price at limit = %d, want %d", tragedy.Price(), want)
	}
}
