package wfs

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// TransportError reports a failed WFS request: a network failure, a non-2xx
// response, or an unreadable payload. StatusCode is zero when the failure
// happened below the HTTP layer.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("wfs: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("wfs: request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// isTransient reports whether a failed request is worth retrying: throttling,
// server-side errors, and the usual network hiccups.
func isTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransportError
	if errors.As(err, &te) {
		if te.StatusCode == 429 || te.StatusCode >= 500 {
			return true
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
