package paging

import (
	"context"
	"fmt"
	"iter"
	"sync/atomic"
)

// Marker is an opaque pagination cursor. The zero value requests the first
// page when passed to a FetchFunc and means "no more pages" in Page.Next.
type Marker string

// Page is one batch of results.
type Page[T any] struct {
	Items []T
	Next  Marker
}

// Last reports whether no page follows this one.
func (p Page[T]) Last() bool {
	return p.Next == ""
}

// FetchFunc retrieves the page identified by marker.
type FetchFunc[T any] func(ctx context.Context, marker Marker) (Page[T], error)

// Iterator walks the items of successive pages.
//
//	it := paging.NewIterator(ctx, fetch)
//	for it.Next() {
//	    use(it.Item())
//	}
//	if err := it.Err(); err != nil { ... }
//
// An Iterator is not safe for concurrent use.
type Iterator[T any] struct {
	ctx   context.Context
	fetch FetchFunc[T]

	buf    []T
	pos    int
	item   T
	marker Marker
	more   bool
	err    error
	pages  int
}

// NewIterator creates an iterator. Nothing is fetched until Next.
func NewIterator[T any](ctx context.Context, fetch FetchFunc[T]) *Iterator[T] {
	return &Iterator[T]{ctx: ctx, fetch: fetch, more: true}
}

// Next advances to the next item, fetching pages as needed. It returns
// false at the end of the sequence or on error.
func (it *Iterator[T]) Next() bool {
	for it.err == nil {
		if it.pos < len(it.buf) {
			it.item = it.buf[it.pos]
			it.pos++
			return true
		}
		if !it.more {
			return false
		}
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}

		page, err := it.fetch(it.ctx, it.marker)
		if err != nil {
			it.err = fmt.Errorf("fetch page %d: %w", it.pages+1, err)
			return false
		}
		it.pages++
		if page.Next != "" && page.Next == it.marker {
			it.err = fmt.Errorf("%w: %q", ErrRepeatedMarker, page.Next)
			return false
		}
		it.buf, it.pos = page.Items, 0
		it.marker = page.Next
		it.more = page.Next != ""
	}
	return false
}

// Item returns the current item. Valid only after Next returned true.
func (it *Iterator[T]) Item() T {
	return it.item
}

// Err returns the error that stopped iteration, if any.
func (it *Iterator[T]) Err() error {
	return it.err
}

// Pages returns the number of pages fetched so far.
func (it *Iterator[T]) Pages() int {
	return it.pages
}

// All returns a single-use sequence over every item. A fetch error is
// yielded once with the zero item and ends the sequence.
func All[T any](ctx context.Context, fetch FetchFunc[T]) iter.Seq2[T, error] {
	var used atomic.Bool
	return func(yield func(T, error) bool) {
		var zero T
		if used.Swap(true) {
			yield(zero, ErrConsumed)
			return
		}
		it := NewIterator(ctx, fetch)
		for it.Next() {
			if !yield(it.Item(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(zero, err)
		}
	}
}

// Collect fetches every page and returns all items in order.
func Collect[T any](ctx context.Context, fetch FetchFunc[T]) ([]T, error) {
	var out []T
	it := NewIterator(ctx, fetch)
	for it.Next() {
		out = append(out, it.Item())
	}
	return out, it.Err()
}
