// Package proxy forwards gateway traffic to the backend services. No
// coordination logic lives here; admission control has already happened
// by the time a request reaches the proxy.
package proxy

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type Upstream struct {
	target *url.URL
	rp     *httputil.ReverseProxy
}

// NewUpstream builds a reverse proxy that strips prefix from the request
// path before forwarding. /booking/bookings/42 -> <base>/bookings/42.
func NewUpstream(base, prefix string, timeout time.Duration) (*Upstream, error) {
	target, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	rp := &httputil.ReverseProxy{
		Director: func(req *http.Request) {
			req.URL.Scheme = target.Scheme
			req.URL.Host = target.Host
			req.Host = target.Host
			req.URL.Path = "/" + strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, prefix), "/")
		},
		Transport: &http.Transport{
			ResponseHeaderTimeout: timeout,
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("[gateway] upstream %s failed: %v", target.Host, err)
			status := http.StatusServiceUnavailable
			detail := "Service unavailable"
			if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
				status = http.StatusGatewayTimeout
				detail = "Service timeout"
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"` + detail + `"}`))
		},
	}
	return &Upstream{target: target, rp: rp}, nil
}

func isTimeout(err error) bool {
	var ne interface{ Timeout() bool }
	return errors.As(err, &ne) && ne.Timeout()
}

// Handler serves every method under the mounted prefix.
func (u *Upstream) Handler(c *gin.Context) {
	u.rp.ServeHTTP(c.Writer, c.Request)
}

func (u *Upstream) Target() string {
	return u.target.String()
}
