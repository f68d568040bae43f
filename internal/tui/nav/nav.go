// Package nav implements the paginated list navigation shared by every
// browsing screen. A List holds view geometry only; the backing rows stay
// with the caller, which re-queries them and calls Reset or Refresh after
// any mutation.
package nav

// List is the navigation state over an ordered sequence of Len rows.
// Invariant, maintained by every transition on a non-empty list:
//
//	0 <= Start <= Cursor < Start+PageSize
//
// and the window never extends past the end except on the final page.
type List struct {
	Len      int
	Cursor   int
	Start    int
	PageSize int
}

// New returns a List positioned at the top.
func New(length, pageSize int) List {
	l := List{Len: length, PageSize: pageSize}
	return l.normalize()
}

// Window returns the half-open row range currently visible.
func (l List) Window() (start, end int) {
	end = l.Start + l.PageSize
	if end > l.Len {
		end = l.Len
	}
	return l.Start, end
}

// MoveDown advances the cursor one row, scrolling by a single row when it
// crosses the bottom edge.
func (l List) MoveDown() List {
	l.Cursor++
	return l.normalize()
}

// MoveUp moves the cursor one row up, scrolling by a single row when it
// crosses the top edge.
func (l List) MoveUp() List {
	l.Cursor--
	return l.normalize()
}

// PageDown shifts cursor and window down one page, clamping at the end.
func (l List) PageDown() List {
	l.Cursor += l.PageSize
	l.Start += l.PageSize
	return l.normalize()
}

// PageUp shifts cursor and window up one page, clamping at the start.
func (l List) PageUp() List {
	l.Cursor -= l.PageSize
	l.Start -= l.PageSize
	return l.normalize()
}

// Home jumps to the first row.
func (l List) Home() List {
	l.Cursor = 0
	l.Start = 0
	return l.normalize()
}

// End jumps to the last row.
func (l List) End() List {
	l.Cursor = l.Len - 1
	l.Start = l.Len - l.PageSize
	return l.normalize()
}

// Reset replaces the backing length and jumps to the top. Used after a
// reorder, where selection identity is not preserved.
func (l List) Reset(length int) List {
	return New(length, l.PageSize)
}

// Refresh replaces the backing length while keeping the cursor where
// possible: an in-bounds cursor stays, an out-of-bounds one clamps to the
// last row. Used after mutations such as mark-read or a sync.
func (l List) Refresh(length int) List {
	l.Len = length
	return l.normalize()
}

// Resize changes the window height, keeping the cursor visible.
func (l List) Resize(pageSize int) List {
	l.PageSize = pageSize
	return l.normalize()
}

// normalize clamps cursor and window back into the invariant.
func (l List) normalize() List {
	if l.PageSize < 1 {
		l.PageSize = 1
	}
	if l.Len <= 0 {
		l.Len = 0
		l.Cursor = 0
		l.Start = 0
		return l
	}
	if l.Cursor < 0 {
		l.Cursor = 0
	}
	if l.Cursor > l.Len-1 {
		l.Cursor = l.Len - 1
	}
	maxStart := l.Len - l.PageSize
	if maxStart < 0 {
		maxStart = 0
	}
	if l.Start > maxStart {
		l.Start = maxStart
	}
	if l.Start < 0 {
		l.Start = 0
	}
	if l.Cursor < l.Start {
		l.Start = l.Cursor
	}
	if l.Cursor >= l.Start+l.PageSize {
		l.Start = l.Cursor - l.PageSize + 1
	}
	return l
}
