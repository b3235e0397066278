package listing

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"
	"time"
)

// URL validation error taxonomy.
const (
	ErrNotFound          = "NOT_FOUND_404"
	ErrHTTP              = "HTTP_ERROR"
	ErrConnectionRefused = "CONNECTION_REFUSED"
	ErrDNS               = "DNS_ERROR"
	ErrTimeout           = "TIMEOUT"
	ErrUnknown           = "UNKNOWN"
)

const (
	headTimeout      = 15 * time.Second
	headMaxRedirects = 5
)

// URLValidator performs lightweight existence checks on candidate
// card URLs before full extraction.
type URLValidator struct {
	client *http.Client
}

// NewURLValidator creates a validator with bounded timeout and
// redirect count.
func NewURLValidator() *URLValidator {
	return &URLValidator{
		client: &http.Client{
			Timeout: headTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= headMaxRedirects {
					return fmt.Errorf("stopped after %d redirects", headMaxRedirects)
				}
				return nil
			},
		},
	}
}

// Check issues an HTTP HEAD and accepts 2xx-3xx. A failure comes back
// classified into the error taxonomy.
func (v *URLValidator) Check(ctx context.Context, rawURL string) (errType string, err error) {
	req, reqErr := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if reqErr != nil {
		return ErrUnknown, reqErr
	}

	resp, doErr := v.client.Do(req)
	if doErr != nil {
		return classifyNetError(doErr), doErr
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound, fmt.Errorf("HTTP 404 for %s", rawURL)
	}
	if resp.StatusCode >= 400 {
		return ErrHTTP, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}
	return "", nil
}

// classifyNetError maps transport failures onto the taxonomy. DNS and
// timeout checks run before the generic connection check because a
// *net.OpError can wrap either.
func classifyNetError(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrDNS
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrConnectionRefused
	}

	return ErrUnknown
}
