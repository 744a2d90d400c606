package paging_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/cloudcore/paging"
)

func ExampleAll() {
	pages := map[paging.Marker]paging.Page[string]{
		"":   {Items: []string{"vol-1", "vol-2"}, Next: "t1"},
		"t1": {Items: []string{"vol-3"}},
	}
	fetch := func(_ context.Context, m paging.Marker) (paging.Page[string], error) {
		return pages[m], nil
	}

	for id, err := range paging.All(context.Background(), fetch) {
		if err != nil {
			fmt.Println("error:", err)
			break
		}
		fmt.Println(id)
	}
	// Output:
	// vol-1
	// vol-2
	// vol-3
}
