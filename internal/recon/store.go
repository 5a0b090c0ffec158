// Package recon holds reconciliation results produced by the external classifier
// and serves paginated windows over their buckets.
package recon

import (
	"fmt"
	"sync"

	"github.com/conciliar/reconcile/internal/model"
)

// DefaultPageSize is used when a page request does not carry a positive size.
const DefaultPageSize = 10

// Window is one page of a bucket. Offset and End are slice bounds into the bucket.
type Window struct {
	Bucket     model.Bucket
	Page       int
	PageSize   int
	TotalPages int
	Total      int
	Offset     int
	End        int
}

// NewWindow computes the window for page over a bucket of total entries. The page is
// clamped into [1, TotalPages], or to 1 when the bucket is empty.
func NewWindow(b model.Bucket, total, page, size int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	page = min(page, pages)
	page = max(page, 1)

	offset := min((page-1)*size, total)
	return Window{
		Bucket:     b,
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Total:      total,
		Offset:     offset,
		End:        min(offset+size, total),
	}
}

// Len is the number of entries on the page.
func (w Window) Len() int { return w.End - w.Offset }

// HasNext reports whether a later page exists.
func (w Window) HasNext() bool { return w.Page < w.TotalPages }

// HasPrev reports whether an earlier page exists.
func (w Window) HasPrev() bool { return w.Page > 1 }

func (w Window) String() string {
	return fmt.Sprintf("%s page %d/%d (%d entries)", w.Bucket, w.Page, max(w.TotalPages, 1), w.Total)
}

type cursor struct {
	page int
	size int
}

// Store holds the current result and one page cursor per bucket. Replacing the
// result swaps it atomically and resets every cursor to page 1.
type Store struct {
	mu       sync.RWMutex
	result   *model.Result
	cursors  [model.NumBuckets]cursor
	pageSize int
}

// NewStore creates an empty Store. pageSize <= 0 selects DefaultPageSize.
func NewStore(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	s := &Store{pageSize: pageSize, result: &model.Result{}}
	s.resetCursors()
	return s
}

func (s *Store) resetCursors() {
	for i := range s.cursors {
		s.cursors[i] = cursor{page: 1, size: s.pageSize}
	}
}

// Replace installs r as the current result. A nil r installs an empty result.
func (s *Store) Replace(r *model.Result) {
	if r == nil {
		r = &model.Result{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
	s.resetCursors()
}

// Result returns the current result. Callers must not modify it.
func (s *Store) Result() *model.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.result
}

// Page moves the cursor of bucket b to page and returns the clamped window. A size
// <= 0 keeps the cursor's current page size.
func (s *Store) Page(b model.Bucket, page, size int) (Window, error) {
	if !b.Valid() {
		return Window{}, fmt.Errorf("unknown bucket %d", int(b))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &s.cursors[b]
	if size <= 0 {
		size = c.size
	}
	w := NewWindow(b, s.result.Len(b), page, size)
	c.page, c.size = w.Page, w.PageSize
	return w, nil
}

// Current returns the window at bucket b's cursor, re-clamped against the current
// bucket length.
func (s *Store) Current(b model.Bucket) (Window, error) {
	if !b.Valid() {
		return Window{}, fmt.Errorf("unknown bucket %d", int(b))
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.cursors[b]
	return NewWindow(b, s.result.Len(b), c.page, c.size), nil
}

// Next advances bucket b's cursor by one page.
func (s *Store) Next(b model.Bucket) (Window, error) { return s.step(b, 1) }

// Prev moves bucket b's cursor back one page.
func (s *Store) Prev(b model.Bucket) (Window, error) { return s.step(b, -1) }

func (s *Store) step(b model.Bucket, delta int) (Window, error) {
	if !b.Valid() {
		return Window{}, fmt.Errorf("unknown bucket %d", int(b))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := &s.cursors[b]
	total := s.result.Len(b)
	cur := NewWindow(b, total, c.page, c.size)
	w := NewWindow(b, total, cur.Page+delta, c.size)
	c.page = w.Page
	return w, nil
}
