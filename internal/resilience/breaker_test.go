package resilience

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBreakerTransitions(t *testing.T) {
	MustRegisterMetrics("test", prometheus.NewRegistry())
	clock := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	b := NewBreaker("stripe-test", 2, 0.5, time.Minute)
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	require.True(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.True(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, Open, b.State())
	require.False(t, b.Allow(ctx))
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerState.WithLabelValues("stripe-test")))

	clock = clock.Add(time.Minute)
	require.True(t, b.Allow(ctx), "one probe after cool-off")
	require.False(t, b.Allow(ctx), "only one probe at a time")
	b.Report(ctx, true)
	require.Equal(t, Closed, b.State())
	require.True(t, b.Allow(ctx))

	require.Equal(t, 1.0, testutil.ToFloat64(BreakerTransitions.WithLabelValues("stripe-test", "closed", "open")))
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerTransitions.WithLabelValues("stripe-test", "open", "half_open")))
	require.Equal(t, 1.0, testutil.ToFloat64(BreakerTransitions.WithLabelValues("stripe-test", "half_open", "closed")))
}

func TestBreakerFailedProbeReopens(t *testing.T) {
	clock := time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)
	b := NewBreaker("probe", 1, 0.5, time.Second)
	b.now = func() time.Time { return clock }
	ctx := context.Background()

	b.Report(ctx, false)
	require.Equal(t, Open, b.State())
	clock = clock.Add(time.Second)
	require.True(t, b.Allow(ctx))
	b.Report(ctx, false)
	require.Equal(t, Open, b.State())
	require.False(t, b.Allow(ctx))
}

func TestTransportFailsFastWhenOpen(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: Transport{Breaker: NewBreaker("upstream", 2, 0.5, time.Hour)}}

	resp, err := client.Get(srv.URL + "/card-declined")
	require.NoError(t, err)
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	_ = resp.Body.Close()

	resp, err = client.Get(srv.URL + "/bad")
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	_ = resp.Body.Close()
	require.Equal(t, 2, calls)

	_, err = client.Get(srv.URL + "/bad")
	require.True(t, errors.Is(err, ErrOpenCircuit))
	require.Equal(t, 2, calls)
}
