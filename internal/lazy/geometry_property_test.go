package lazy

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestMarginStringParsesBack(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("ParseMargin(m.String()) == m", prop.ForAll(
		func(top, right, bottom, left int) bool {
			m := Margin{Top: float64(top), Right: float64(right), Bottom: float64(bottom), Left: float64(left)}
			got, err := ParseMargin(m.String())
			return err == nil && got == m
		},
		gen.IntRange(-500, 500),
		gen.IntRange(-500, 500),
		gen.IntRange(-500, 500),
		gen.IntRange(-500, 500),
	))
	properties.TestingRun(t)
}

func TestVisibleFractionBounded(t *testing.T) {
	root := Rect{Width: 1280, Height: 800}
	properties := gopter.NewProperties(nil)
	properties.Property("visible fraction stays within [0,1]", prop.ForAll(
		func(y, height int) bool {
			f, _ := VisibleFraction(Rect{Y: float64(y), Width: 1280, Height: float64(height)}, root)
			return f >= 0 && f <= 1
		},
		gen.IntRange(-2000, 2000),
		gen.IntRange(0, 2000),
	))
	properties.TestingRun(t)
}
