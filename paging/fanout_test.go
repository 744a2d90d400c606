package paging

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func regionJoin() Join[string, string] {
	return Join[string, string]{
		ParentKind: "region",
		ChildKind:  "zone",
		Parents:    []string{"us-east-1", "eu-west-1"},
		Children: map[string][]string{
			"us-east-1": {"us-east-1a", "us-east-1b"},
			"eu-west-1": {"eu-west-1a"},
		},
	}
}

func TestFanOut(t *testing.T) {
	var fetched []string
	fetch, err := FanOut(regionJoin(), func(_ context.Context, region, zone string, m Marker) (Page[string], error) {
		fetched = append(fetched, zone+"@"+string(m))
		if zone == "us-east-1a" && m == "" {
			return Page[string]{Items: []string{"i-1"}, Next: "more"}, nil
		}
		if zone == "us-east-1a" {
			return Page[string]{Items: []string{"i-2"}}, nil
		}
		if zone == "us-east-1b" {
			return Page[string]{}, nil
		}
		return Page[string]{Items: []string{"i-3"}}, nil
	})
	if err != nil {
		t.Fatalf("FanOut() error = %v", err)
	}

	got, err := Collect(context.Background(), fetch)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if want := []string{"i-1", "i-2", "i-3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("items = %v, want %v", got, want)
	}
	if want := []string{"us-east-1a@", "us-east-1a@more", "us-east-1b@", "eu-west-1a@"}; !reflect.DeepEqual(fetched, want) {
		t.Errorf("fetch order = %v, want %v", fetched, want)
	}
}

func TestFanOut_MissingMappingFailsImmediately(t *testing.T) {
	j := regionJoin()
	j.Parents = append(j.Parents, "ap-south-1", "sa-east-1")

	calls := 0
	fetch, err := FanOut(j, func(context.Context, string, string, Marker) (Page[string], error) {
		calls++
		return Page[string]{Items: []string{"x"}}, nil
	})

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("FanOut() error = %v, want *ConfigError", err)
	}
	if fetch != nil {
		t.Error("FanOut() returned a fetch func alongside the error")
	}
	if calls != 0 {
		t.Errorf("fetch called %d times before validation failed", calls)
	}
	if !reflect.DeepEqual(cfgErr.Missing, []string{"ap-south-1", "sa-east-1"}) {
		t.Errorf("Missing = %v", cfgErr.Missing)
	}
	if msg := err.Error(); !strings.Contains(msg, "no zone mapping for region ap-south-1, sa-east-1") {
		t.Errorf("Error() = %q", msg)
	}
}

func TestFanOut_EmptyChildListIsAllowed(t *testing.T) {
	j := regionJoin()
	j.Children["eu-west-1"] = nil
	pairs, err := j.Pairs()
	if err != nil {
		t.Fatalf("Pairs() error = %v", err)
	}
	if len(pairs) != 2 {
		t.Errorf("Pairs() = %v, want 2 pairs", pairs)
	}
}

func TestFanOut_ErrorNamesPair(t *testing.T) {
	fetch, _ := FanOut(regionJoin(), func(_ context.Context, _, zone string, _ Marker) (Page[string], error) {
		return Page[string]{}, errors.New("denied")
	})
	_, err := Collect(context.Background(), fetch)
	if err == nil || !strings.Contains(err.Error(), "region us-east-1 / zone us-east-1a: denied") {
		t.Errorf("Collect() error = %v", err)
	}
}

func TestFanOut_InvalidMarker(t *testing.T) {
	fetch, _ := FanOut(regionJoin(), func(context.Context, string, string, Marker) (Page[string], error) {
		return Page[string]{}, nil
	})
	if _, err := fetch(context.Background(), "nope"); !errors.Is(err, ErrInvalidMarker) {
		t.Errorf("fetch(nope) error = %v, want ErrInvalidMarker", err)
	}
}
