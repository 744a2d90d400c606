package paging

import (
	"context"
	"fmt"
	"strconv"
)

// Offsets adapts an offset/limit API. The marker carries the next offset;
// a short page ends the sequence.
func Offsets[T any](pageSize int, fetch func(ctx context.Context, offset, limit int) ([]T, error)) FetchFunc[T] {
	if pageSize <= 0 {
		pageSize = 100
	}
	return func(ctx context.Context, marker Marker) (Page[T], error) {
		offset := 0
		if marker != "" {
			n, err := strconv.Atoi(string(marker))
			if err != nil || n < 0 {
				return Page[T]{}, fmt.Errorf("%w: offset %q", ErrInvalidMarker, marker)
			}
			offset = n
		}
		items, err := fetch(ctx, offset, pageSize)
		if err != nil {
			return Page[T]{}, err
		}
		page := Page[T]{Items: items}
		if len(items) >= pageSize {
			page.Next = Marker(strconv.Itoa(offset + len(items)))
		}
		return page, nil
	}
}

// NextLinks adapts an API whose responses carry the URL of the next page.
// The first request goes to first; an empty next link ends the sequence.
func NextLinks[T any](first string, fetch func(ctx context.Context, link string) (items []T, next string, err error)) FetchFunc[T] {
	return func(ctx context.Context, marker Marker) (Page[T], error) {
		link := first
		if marker != "" {
			link = string(marker)
		}
		items, next, err := fetch(ctx, link)
		if err != nil {
			return Page[T]{}, err
		}
		return Page[T]{Items: items, Next: Marker(next)}, nil
	}
}
