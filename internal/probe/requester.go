package probe

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// Requester performs a single attempt against host.
type Requester interface {
	Do(ctx context.Context, host string) Outcome
}

// HTTPRequester issues plain GET requests with default headers.
type HTTPRequester struct {
	client *http.Client
}

// NewHTTPRequester returns a requester whose requests are bounded by timeout.
// A non-positive timeout selects DefaultTimeout. Connections are not reused
// between attempts so every sample includes connection setup.
func NewHTTPRequester(timeout time.Duration) *HTTPRequester {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableKeepAlives = true
	return &HTTPRequester{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Do sends one GET and reads the whole body. Elapsed spans from just before
// the request to the end of the body.
func (r *HTTPRequester) Do(ctx context.Context, host string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, host, nil)
	if err != nil {
		return Failure(err)
	}
	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return Failure(err)
	}
	_, err = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	elapsed := time.Since(start)
	if err != nil {
		return Failure(err)
	}
	return Response(resp.StatusCode, elapsed)
}

// Classify maps a transport error to a failure kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOtherError
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return KindTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindConnectionFailure
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return KindConnectionFailure
	}
	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH):
		return KindConnectionFailure
	}
	if isTLSFailure(err) || errors.Is(err, io.EOF) {
		return KindConnectionFailure
	}
	return KindOtherError
}

// isTLSFailure reports handshake and certificate verification errors.
func isTLSFailure(err error) bool {
	var (
		verifyErr  *tls.CertificateVerificationError
		authErr    x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
		recordErr  tls.RecordHeaderError
	)
	return errors.As(err, &verifyErr) ||
		errors.As(err, &authErr) ||
		errors.As(err, &hostErr) ||
		errors.As(err, &invalidErr) ||
		errors.As(err, &recordErr)
}
