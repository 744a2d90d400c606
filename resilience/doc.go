// Package resilience decides when a failed cloud API call is retried.
//
// A [Policy] inspects the request (method and embedded action) and the
// attempt's [Outcome] and returns a [Decision]:
//
//   - success stops;
//   - transport failures are retried only for idempotent requests, since a
//     repeated write after an ambiguous failure may duplicate side effects;
//   - 429 responses wait for the server's reset hint, clamped to a floor and
//     bounded by MaxRateLimitWait;
//   - busy servers are retried for any request;
//   - the attempt budget ends everything.
//
// Delays without a hint come from [Backoff] (exponential with a cap and
// jitter). A [Throttle] can be shared by concurrent operations to apply a
// common rate and propagate reset pauses.
//
//	p := resilience.NewPolicy(resilience.PolicyConfig{MaxAttempts: 4})
//	d := p.Decide(attempt, req, resilience.Outcome{Err: err}, time.Now())
//	if d.Retry {
//	    time.Sleep(d.Delay)
//	}
package resilience
