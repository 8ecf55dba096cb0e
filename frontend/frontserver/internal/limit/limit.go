package limit

import (
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/didip/tollbooth/v6/limiter"
	"github.com/footstore/footstore/frontend/frontserver/internal/middleware"
	"github.com/footstore/footstore/server/httperr"
)

// RateLimit limits each client IP to n requests per second. A non-positive n
// disables the limit.
func RateLimit(n float64) middleware.F {
	if n <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	l := tollbooth.NewLimiter(n, &limiter.ExpirableOptions{
		DefaultExpirationTTL: time.Hour,
	})
	l.SetIPLookups([]string{"X-Forwarded-For", "RemoteAddr", "X-Real-IP"})

	return middleware.P(func(w http.ResponseWriter, r *http.Request) bool {
		if err := tollbooth.LimitByRequest(l, w, r); err != nil {
			renderError(w, httperr.Wrap(err, err.StatusCode, "rate limited"))
			return false
		}
		return true
	})
}

func renderError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(httperr.ErrCode(err))
	fmt.Fprintln(w, err)
}
