package lazy

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is a layout box in CSS pixels.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) right() float64  { return r.X + r.Width }
func (r Rect) bottom() float64 { return r.Y + r.Height }

// Area returns the box area, zero for degenerate boxes.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// Expand grows the box by m on each side. Negative margins shrink it.
func (r Rect) Expand(m Margin) Rect {
	return Rect{
		X:      r.X - m.Left,
		Y:      r.Y - m.Top,
		Width:  r.Width + m.Left + m.Right,
		Height: r.Height + m.Top + m.Bottom,
	}
}

// intersect returns the overlap of r and o. ok is false when the boxes do not touch;
// edge-adjacent boxes count as touching with a zero-area overlap.
func (r Rect) intersect(o Rect) (Rect, bool) {
	left := max(r.X, o.X)
	top := max(r.Y, o.Y)
	right := min(r.right(), o.right())
	bottom := min(r.bottom(), o.bottom())
	if right < left || bottom < top {
		return Rect{}, false
	}
	return Rect{X: left, Y: top, Width: right - left, Height: bottom - top}, true
}

// Margin is a root margin in CSS pixels, in CSS order.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Uniform returns a margin with the same value on all sides.
func Uniform(px float64) Margin {
	return Margin{Top: px, Right: px, Bottom: px, Left: px}
}

// String renders the margin in CSS shorthand.
func (m Margin) String() string {
	if m.Top == m.Right && m.Right == m.Bottom && m.Bottom == m.Left {
		return px(m.Top)
	}
	if m.Top == m.Bottom && m.Right == m.Left {
		return px(m.Top) + " " + px(m.Right)
	}
	return strings.Join([]string{px(m.Top), px(m.Right), px(m.Bottom), px(m.Left)}, " ")
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// ParseMargin parses CSS margin shorthand with one to four pixel values, e.g. "50px" or "10px 0px".
func ParseMargin(s string) (Margin, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 || len(fields) > 4 {
		return Margin{}, fmt.Errorf("lazy: invalid root margin %q", s)
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		raw := strings.TrimSuffix(strings.ToLower(f), "px")
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Margin{}, fmt.Errorf("lazy: invalid root margin %q: %w", s, err)
		}
		if raw != "0" && !strings.HasSuffix(strings.ToLower(f), "px") {
			return Margin{}, fmt.Errorf("lazy: root margin %q must use px units", s)
		}
		values[i] = v
	}
	switch len(values) {
	case 1:
		return Uniform(values[0]), nil
	case 2:
		return Margin{Top: values[0], Right: values[1], Bottom: values[0], Left: values[1]}, nil
	case 3:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[1]}, nil
	default:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[3]}, nil
	}
}

// VisibleFraction reports how much of target lies inside root, and whether they touch at all.
// A zero-area target that touches the root counts as fully visible.
func VisibleFraction(target, root Rect) (float64, bool) {
	overlap, ok := target.intersect(root)
	if !ok {
		return 0, false
	}
	area := target.Area()
	if area == 0 {
		return 1, true
	}
	return overlap.Area() / area, true
}
