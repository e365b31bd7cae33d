package httpmiddleware

import (
	"net/http"

	"golang.org/x/time/rate"
)

// Throttle limits outbound request rate. The backend rate-limits aggressively
// when the dashboard, containers and news feeds refresh at the same moment;
// a small client-side budget smooths those bursts out.
func Throttle(rps float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return func(next http.RoundTripper) http.RoundTripper {
		return RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.RoundTrip(req)
		})
	}
}
