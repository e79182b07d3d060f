package store

import (
	"strings"
	"testing"
	"time"
)

// The created_at column is TEXT under BINARY collation, so the layout must
// keep lexicographic order in sync with chronological order. RFC3339Nano
// trims trailing fractional zeros and breaks that whenever one fraction is
// a prefix of another.
func TestTimeLayoutSortsChronologically(t *testing.T) {
	cases := []struct {
		older, newer time.Time
	}{
		{
			time.Date(2026, 9, 1, 10, 0, 0, 500_000_000, time.UTC),
			time.Date(2026, 9, 1, 10, 0, 0, 550_000_000, time.UTC),
		},
		{
			time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
			time.Date(2026, 9, 1, 10, 0, 0, 1, time.UTC),
		},
		{
			time.Date(2026, 9, 1, 10, 0, 0, 999_999_999, time.UTC),
			time.Date(2026, 9, 1, 10, 0, 1, 0, time.UTC),
		},
	}

	for _, tc := range cases {
		older := tc.older.Format(timeLayout)
		newer := tc.newer.Format(timeLayout)
		if len(older) != len(newer) {
			t.Fatalf("layout is not fixed-width: %q vs %q", older, newer)
		}
		if strings.Compare(older, newer) >= 0 {
			t.Fatalf("lexicographic order disagrees with time order: %q >= %q", older, newer)
		}
	}
}

func TestTimeLayoutRoundTrip(t *testing.T) {
	want := time.Date(2026, 9, 1, 10, 0, 0, 550_000_000, time.UTC)
	got, err := time.Parse(time.RFC3339Nano, want.Format(timeLayout))
	if err != nil {
		t.Fatalf("parse formatted timestamp: %v", err)
	}
	if !got.Equal(want) {
		t.Fatalf("round trip changed the timestamp: got %v want %v", got, want)
	}
}
