package paging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Join describes a one-to-many mapping from parent keys to child keys
// obtained from a separate source, e.g. regions to zones.
type Join[P comparable, C any] struct {
	ParentKind string // e.g. "region"
	ChildKind  string // e.g. "zone"
	Parents    []P
	Children   map[P][]C
}

// Pair is one parent/child combination of a Join.
type Pair[P comparable, C any] struct {
	Parent P
	Child  C
}

// Pairs expands the join in parent order. Every parent must have an entry
// in Children (possibly empty); otherwise a *ConfigError lists all parents
// lacking one.
func (j Join[P, C]) Pairs() ([]Pair[P, C], error) {
	var missing []string
	var pairs []Pair[P, C]
	for _, p := range j.Parents {
		children, ok := j.Children[p]
		if !ok {
			missing = append(missing, fmt.Sprint(p))
			continue
		}
		for _, c := range children {
			pairs = append(pairs, Pair[P, C]{Parent: p, Child: c})
		}
	}
	if len(missing) > 0 {
		return nil, &ConfigError{
			ParentKind: orDefault(j.ParentKind, "parent"),
			ChildKind:  orDefault(j.ChildKind, "child"),
			Missing:    missing,
		}
	}
	return pairs, nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// FanOut builds a FetchFunc that pages through fetch for every pair of the
// join in order. The join is validated before FanOut returns, so a gap in
// the mapping fails before any page is fetched.
func FanOut[P comparable, C any, T any](j Join[P, C], fetch func(ctx context.Context, parent P, child C, marker Marker) (Page[T], error)) (FetchFunc[T], error) {
	pairs, err := j.Pairs()
	if err != nil {
		return nil, err
	}
	return func(ctx context.Context, marker Marker) (Page[T], error) {
		idx, inner, err := decodeFanOutMarker(marker)
		if err != nil {
			return Page[T]{}, err
		}
		if idx >= len(pairs) {
			return Page[T]{}, nil
		}

		pair := pairs[idx]
		page, err := fetch(ctx, pair.Parent, pair.Child, inner)
		if err != nil {
			return Page[T]{}, fmt.Errorf("%s %v / %s %v: %w",
				orDefault(j.ParentKind, "parent"), pair.Parent, orDefault(j.ChildKind, "child"), pair.Child, err)
		}

		switch {
		case page.Next != "":
			page.Next = encodeFanOutMarker(idx, page.Next)
		case idx+1 < len(pairs):
			page.Next = encodeFanOutMarker(idx+1, "")
		}
		return page, nil
	}, nil
}

// Fan-out markers are "<pair index>:<inner marker>".
func encodeFanOutMarker(idx int, inner Marker) Marker {
	return Marker(strconv.Itoa(idx) + ":" + string(inner))
}

func decodeFanOutMarker(m Marker) (int, Marker, error) {
	if m == "" {
		return 0, "", nil
	}
	head, inner, ok := strings.Cut(string(m), ":")
	idx, err := strconv.Atoi(head)
	if !ok || err != nil || idx < 0 {
		return 0, "", fmt.Errorf("%w: %q", ErrInvalidMarker, m)
	}
	return idx, Marker(inner), nil
}
