package dispatch_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jonwraymond/cloudcore/auth"
	"github.com/jonwraymond/cloudcore/classify"
	"github.com/jonwraymond/cloudcore/dispatch"
	"github.com/jonwraymond/cloudcore/observe"
	"github.com/jonwraymond/cloudcore/request"
)

func ExampleInvoke() {
	transport := dispatch.TransportFunc(func(_ context.Context, req *request.Request) (*dispatch.Response, error) {
		return &dispatch.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": {"application/json"}},
			Body:       io.NopCloser(strings.NewReader(`{"name":"web-1"}`)),
		}, nil
	})
	d, err := dispatch.New(transport, auth.AnonymousSigner, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	type server struct {
		Name string `json:"name"`
	}
	op := observe.Operation{Provider: "openstack", Service: "compute", Name: "GetServer"}
	req := request.MustNew(request.MethodGet, "https://compute.example.com/servers/42")

	srv, err := dispatch.Invoke(context.Background(), d, op, req, dispatch.JSON[server]())
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(srv.Name)
	// Output: web-1
}

func ExampleDispatcher_Do_notFound() {
	transport := dispatch.TransportFunc(func(_ context.Context, req *request.Request) (*dispatch.Response, error) {
		return &dispatch.Response{
			StatusCode: http.StatusNotFound,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{"code":"OBJECT_NOT_FOUND","message":"no such object"}`)),
		}, nil
	})
	d, _ := dispatch.New(transport, auth.AnonymousSigner, nil)

	op := observe.Operation{Provider: "atmos", Service: "objects", Name: "GetObject"}
	err := d.Do(context.Background(), op, request.MustNew(request.MethodGet, "https://objects.example.com/rest/objects/abc"))
	fmt.Println(classify.KindOf(err))
	// Output: not_found
}
