// Package pagination holds the offset/limit cursor shared by every list view.
package pagination

// State is a list cursor plus the server-reported total. Offset stays a
// multiple of Limit because it only moves by whole pages. TotalCount is
// written only from a fetch response, never by navigation.
type State struct {
	Limit      int
	Offset     int
	TotalCount int
}

// New returns a cursor at the first page. A non-positive limit falls back to 10.
func New(limit int) State {
	if limit <= 0 {
		limit = 10
	}
	return State{Limit: limit}
}

// Range returns the 1-based positions of the first and last row on the page.
// With TotalCount 0 it yields (1, 0); callers show an empty message instead.
func (s State) Range() (start, end int) {
	start = s.Offset + 1
	end = min(s.Offset+s.Limit, s.TotalCount)
	return start, end
}

func (s State) CanGoPrevious() bool {
	return s.Offset > 0
}

func (s State) CanGoNext() bool {
	return s.Offset+s.Limit < s.TotalCount
}

// GoPrevious moves one page back and reports whether the offset changed.
func (s *State) GoPrevious() bool {
	if !s.CanGoPrevious() {
		return false
	}
	s.Offset = max(0, s.Offset-s.Limit)
	return true
}

// GoNext moves one page forward and reports whether the offset changed.
func (s *State) GoNext() bool {
	if !s.CanGoNext() {
		return false
	}
	s.Offset += s.Limit
	return true
}

// Reset returns to the first page.
func (s *State) Reset() {
	s.Offset = 0
}

// WithTotal returns a copy carrying a freshly fetched total.
func (s State) WithTotal(total int) State {
	s.TotalCount = total
	return s
}

// Page is the 1-based page number of the cursor.
func (s State) Page() int {
	return s.Offset/s.Limit + 1
}

// Pages is the number of pages TotalCount spans, at least 1.
func (s State) Pages() int {
	if s.TotalCount <= 0 {
		return 1
	}
	return (s.TotalCount + s.Limit - 1) / s.Limit
}
