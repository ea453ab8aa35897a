package lazy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseMargin(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Margin
	}{
		{"50px", Uniform(50)},
		{"0", Uniform(0)},
		{"10px 20px", Margin{Top: 10, Right: 20, Bottom: 10, Left: 20}},
		{"10px 20px 30px", Margin{Top: 10, Right: 20, Bottom: 30, Left: 20}},
		{"1px 2px 3px 4px", Margin{Top: 1, Right: 2, Bottom: 3, Left: 4}},
		{" -25px ", Uniform(-25)},
	}
	for _, tc := range cases {
		got, err := ParseMargin(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	for _, bad := range []string{"", "10%", "abc", "1px 2px 3px 4px 5px", "10em"} {
		_, err := ParseMargin(bad)
		require.Error(t, err, bad)
	}
}

func TestMarginStringRoundTrips(t *testing.T) {
	t.Parallel()

	for _, m := range []Margin{Uniform(50), {Top: 10, Right: 0, Bottom: 10, Left: 0}, {Top: 1, Right: 2, Bottom: 3, Left: 4}} {
		parsed, err := ParseMargin(m.String())
		require.NoError(t, err)
		require.Equal(t, m, parsed)
	}
}

func TestVisibleFraction(t *testing.T) {
	t.Parallel()

	root := Rect{Width: 100, Height: 100}

	f, ok := VisibleFraction(Rect{X: 50, Y: 0, Width: 100, Height: 100}, root)
	require.True(t, ok)
	require.InDelta(t, 0.5, f, 1e-9)

	f, ok = VisibleFraction(Rect{X: 200, Width: 10, Height: 10}, root)
	require.False(t, ok)
	require.Zero(t, f)

	f, ok = VisibleFraction(Rect{X: 10, Y: 10}, root)
	require.True(t, ok)
	require.Equal(t, 1.0, f, "zero-area targets inside the root are fully visible")
}
