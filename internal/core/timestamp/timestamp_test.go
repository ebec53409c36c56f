package timestamp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{
			name: "bare date is midnight UTC",
			raw:  "2024-01-03",
			want: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "utc marker",
			raw:  "2023-01-03T12:00:00Z",
			want: time.Date(2023, 1, 3, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "positive offset converted to utc",
			raw:  "2024-03-01T08:00:00+08:00",
			want: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "negative offset crosses midnight",
			raw:  "2024-03-01T22:30:00-05:00",
			want: time.Date(2024, 3, 2, 3, 30, 0, 0, time.UTC),
		},
		{
			name: "fractional seconds truncated",
			raw:  "2024-03-01T08:00:00.987Z",
			want: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			name: "surrounding whitespace",
			raw:  "  2024-01-03 \t",
			want: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Normalize(tc.raw)
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "want=%s got=%s", tc.want, got)
			require.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"   ",
		"03/01/2024",
		"2024/01/03",
		"2024-1-3",
		"2024-02-30",
		"2024-13-01",
		"2023-01-03T12:00:00",
		"2023-01-03 12:00:00Z",
		"2023-01-03T12:00Z",
		"2023-01-03T12:00:00+0800",
		"2024-01-03T10:30:00,5Z",
		"2024-01-03T10:30:00,987+08:00",
		"yesterday",
	} {
		t.Run(raw, func(t *testing.T) {
			_, err := Normalize(raw)
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestFormat_RoundTrips(t *testing.T) {
	for _, raw := range []string{
		"2024-01-03",
		"2023-12-31T23:59:59Z",
		"2024-06-15T09:15:42.5+02:00",
		"1999-02-28T00:00:00-11:00",
	} {
		t.Run(raw, func(t *testing.T) {
			first, err := Normalize(raw)
			require.NoError(t, err)

			canonical := Format(first)
			require.Len(t, canonical, len(CanonicalLayout))
			require.Equal(t, byte('Z'), canonical[len(canonical)-1])

			again, err := Normalize(canonical)
			require.NoError(t, err)
			require.True(t, first.Equal(again))

			stored, err := ParseCanonical(canonical)
			require.NoError(t, err)
			require.True(t, first.Equal(stored))
		})
	}
}

func TestFormat_SortsLexicographically(t *testing.T) {
	earlier := Format(time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC))
	later := Format(time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC))
	require.Less(t, earlier, later)
	require.Equal(t, "2024-01-01T01:00:00Z", later)
}

func TestSentinelPrecedesRealData(t *testing.T) {
	got, err := Normalize("1900-01-02")
	require.NoError(t, err)
	require.True(t, got.After(Sentinel))
	require.Equal(t, "1900-01-01T00:00:00Z", Format(Sentinel))
}
