package probe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/NodePath81/httpbench/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRequester struct {
	outcomes []Outcome
	calls    int
}

func (s *scriptedRequester) Do(ctx context.Context, host string) Outcome {
	out := s.outcomes[s.calls%len(s.outcomes)]
	s.calls++
	return out
}

type recordingObserver struct {
	mu    sync.Mutex
	kinds []Kind
}

func (r *recordingObserver) Observe(host string, o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds = append(r.kinds, o.Kind)
}

func quietLogger() util.Logger {
	return util.NewLogger(&bytes.Buffer{}, slog.LevelInfo)
}

func TestProbeMixedOutcomes(t *testing.T) {
	req := &scriptedRequester{outcomes: []Outcome{
		Response(200, 50*time.Millisecond),
		{Kind: KindTimeout, Err: context.DeadlineExceeded},
		Response(200, 150*time.Millisecond),
	}}
	p := New(req, WithLogger(quietLogger()))

	res, err := p.Probe(context.Background(), "https://example.test", 3)
	require.NoError(t, err)

	assert.Equal(t, "https://example.test", res.Host)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 1, res.Errors)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 150 * time.Millisecond}, res.Samples)
	assert.Equal(t, 50*time.Millisecond, res.Min)
	assert.Equal(t, 150*time.Millisecond, res.Max)
	assert.Equal(t, 100*time.Millisecond, res.Avg)
	assert.Equal(t, 3, res.Count())
}

func TestProbeCountsAddUp(t *testing.T) {
	req := &scriptedRequester{outcomes: []Outcome{
		Response(200, 10*time.Millisecond),
		Response(404, 20*time.Millisecond),
		{Kind: KindConnectionFailure, Err: errors.New("refused")},
		Response(301, 5*time.Millisecond),
		{Kind: KindOtherError, Err: errors.New("malformed")},
		Response(500, 40*time.Millisecond),
		{Kind: KindTimeout},
	}}
	p := New(req, WithLogger(quietLogger()))

	for _, count := range []int{1, 2, 7, 13} {
		req.calls = 0
		res, err := p.Probe(context.Background(), "http://mixed.test", count)
		require.NoError(t, err)
		assert.Equal(t, count, res.Success+res.Failed+res.Errors, "count %d", count)
		assert.Len(t, res.Samples, res.Success+res.Failed, "count %d", count)
		if len(res.Samples) > 0 {
			assert.LessOrEqual(t, res.Min, res.Avg)
			assert.LessOrEqual(t, res.Avg, res.Max)
		}
	}
}

func TestProbeStatusBoundary(t *testing.T) {
	req := &scriptedRequester{outcomes: []Outcome{
		Response(399, time.Millisecond),
		Response(400, time.Millisecond),
	}}
	p := New(req, WithLogger(quietLogger()))

	res, err := p.Probe(context.Background(), "http://boundary.test", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Success)
	assert.Equal(t, 1, res.Failed)
}

func TestProbeAllErrorsHasZeroStats(t *testing.T) {
	req := &scriptedRequester{outcomes: []Outcome{{Kind: KindTimeout, Err: context.DeadlineExceeded}}}
	p := New(req, WithLogger(quietLogger()))

	res, err := p.Probe(context.Background(), "http://slow.test", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Errors)
	assert.Empty(t, res.Samples)
	assert.Zero(t, res.Min)
	assert.Zero(t, res.Max)
	assert.Zero(t, res.Avg)
}

func TestProbeInvalidCount(t *testing.T) {
	p := New(&scriptedRequester{outcomes: []Outcome{Response(200, 0)}}, WithLogger(quietLogger()))
	_, err := p.Probe(context.Background(), "http://x.test", 0)
	require.ErrorIs(t, err, ErrInvalidCount)
}

func TestProbeCancelled(t *testing.T) {
	p := New(&scriptedRequester{outcomes: []Outcome{Response(200, 0)}}, WithLogger(quietLogger()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Probe(ctx, "http://x.test", 3)
	require.ErrorIs(t, err, context.Canceled)
}

func TestProbeLogsDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	req := &scriptedRequester{outcomes: []Outcome{
		{Kind: KindTimeout, Err: context.DeadlineExceeded},
		{Kind: KindConnectionFailure, Err: errors.New("dial tcp: connection refused")},
		{Kind: KindOtherError, Err: errors.New("malformed HTTP response")},
	}}
	p := New(req, WithLogger(util.NewLogger(&buf, slog.LevelInfo)))

	res, err := p.Probe(context.Background(), "http://diag.test", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Errors)

	out := buf.String()
	assert.Contains(t, out, "request timed out")
	assert.Contains(t, out, "connection failed")
	assert.Contains(t, out, "request failed")
	assert.Contains(t, out, "malformed HTTP response")
	assert.Equal(t, 3, strings.Count(out, "host=http://diag.test"))
}

func TestProbeAllKeepsHostsIndependent(t *testing.T) {
	okSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer okSrv.Close()
	badSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer badSrv.Close()

	obs := &recordingObserver{}
	p := New(NewHTTPRequester(2*time.Second), WithLogger(quietLogger()), WithObserver(obs))

	results, err := p.ProbeAll(context.Background(), []string{okSrv.URL, badSrv.URL}, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, okSrv.URL, results[0].Host)
	assert.Equal(t, 3, results[0].Success)
	assert.Equal(t, 0, results[0].Failed)
	assert.Len(t, results[0].Samples, 3)

	assert.Equal(t, badSrv.URL, results[1].Host)
	assert.Equal(t, 0, results[1].Success)
	assert.Equal(t, 3, results[1].Failed)
	assert.Equal(t, 0, results[1].Errors)
	assert.Len(t, results[1].Samples, 3)

	assert.Len(t, obs.kinds, 6)
}

func TestProbeRatePacing(t *testing.T) {
	p := New(&scriptedRequester{outcomes: []Outcome{Response(200, 0)}}, WithLogger(quietLogger()), WithRate(20))
	start := time.Now()
	_, err := p.Probe(context.Background(), "http://paced.test", 3)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestHTTPRequesterTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := New(NewHTTPRequester(50*time.Millisecond), WithLogger(quietLogger()))
	res, err := p.Probe(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Errors)
	assert.Empty(t, res.Samples)
	assert.Zero(t, res.Avg)
}

func TestHTTPRequesterConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	out := NewHTTPRequester(time.Second).Do(context.Background(), "http://"+addr)
	assert.Equal(t, KindConnectionFailure, out.Kind)
	assert.Error(t, out.Err)
}

func TestHTTPRequesterMalformedResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		buf := make([]byte, 1024)
		_, _ = conn.Read(buf)
		_, _ = conn.Write([]byte("this is not http\r\n\r\n"))
		_ = conn.Close()
	}()

	out := NewHTTPRequester(time.Second).Do(context.Background(), "http://"+ln.Addr().String())
	assert.Equal(t, KindOtherError, out.Kind)
	assert.Error(t, out.Err)
}

func TestHTTPRequesterReadsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer srv.Close()

	out := NewHTTPRequester(time.Second).Do(context.Background(), srv.URL)
	assert.Equal(t, KindResponse, out.Kind)
	assert.Equal(t, http.StatusTeapot, out.StatusCode)
	assert.True(t, out.Failed())
	assert.Greater(t, out.Elapsed, time.Duration(0))
}
