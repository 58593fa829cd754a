package selection

// Rect is an on-screen box. Units are whatever the caller draws in: cells
// for the terminal dashboard, pixels elsewhere.
type Rect struct {
	Top    int
	Left   int
	Width  int
	Height int
}

// Right is the first column past the box.
func (r Rect) Right() int { return r.Left + r.Width }

// Bottom is the first row past the box.
func (r Rect) Bottom() int { return r.Top + r.Height }

// Size is a width/height pair.
type Size struct {
	Width  int
	Height int
}

// Layout holds the spacing rules for the action panel.
type Layout struct {
	// Padding is the margin kept free on every side of the viewport.
	Padding int
	// Gap separates the panel from its anchor.
	Gap int
}

// Place positions a panel of the given size next to anchor inside
// viewport. The panel goes to the right of the anchor when it fits, to the
// left otherwise, and is then clamped so it stays inside the viewport minus
// Padding. A panel that would run past the bottom is pushed up.
func (l Layout) Place(anchor Rect, panel Size, viewport Size) Rect {
	left := anchor.Right() + l.Gap
	if left+panel.Width > viewport.Width-l.Padding {
		left = anchor.Left - l.Gap - panel.Width
	}

	left = clamp(left, l.Padding, viewport.Width-panel.Width-l.Padding)

	top := anchor.Top
	if top+panel.Height > viewport.Height-l.Padding {
		top = viewport.Height - l.Padding - panel.Height
	}

	top = clamp(top, l.Padding, top)

	return Rect{Top: top, Left: left, Width: panel.Width, Height: panel.Height}
}

// clamp bounds v to [lo, hi]; lo wins when the range is empty.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}

	if v < lo {
		v = lo
	}

	return v
}
