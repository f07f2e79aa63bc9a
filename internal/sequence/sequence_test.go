package sequence

import (
	"testing"
	"time"
)

func TestFormat(t *testing.T) {
	day := time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)

	for _, tc := range []struct {
		n    int
		want string
	}{
		{1, "PP-20260831-0001"},
		{42, "PP-20260831-0042"},
		{9999, "PP-20260831-9999"},
		{10000, "PP-20260831-10000"}, // счётчик не переполняется, номер просто длиннее
	} {
		if got := Format("PP", day, tc.n); got != tc.want {
			t.Errorf("Format(PP, %s, %d) = %q, want %q", day.Format("2006-01-02"), tc.n, got, tc.want)
		}
	}
}
