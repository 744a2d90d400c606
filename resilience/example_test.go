package resilience_test

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jonwraymond/cloudcore/request"
	"github.com/jonwraymond/cloudcore/resilience"
)

func ExamplePolicy_Decide() {
	p := resilience.NewPolicy(resilience.PolicyConfig{MaxAttempts: 3})
	reset := errors.New("connection reset")

	describe := request.MustNew(request.MethodPost, "https://ec2.amazonaws.com/").
		WithBody(request.FormBody(url.Values{"Action": {"DescribeInstances"}}))
	run := request.MustNew(request.MethodPost, "https://ec2.amazonaws.com/").
		WithBody(request.FormBody(url.Values{"Action": {"RunInstances"}}))

	fmt.Println(p.Decide(1, describe, resilience.Outcome{Err: reset}, time.Now()).Retry)
	fmt.Println(p.Decide(1, run, resilience.Outcome{Err: reset}, time.Now()).Reason)
	// Output:
	// true
	// not_idempotent
}
