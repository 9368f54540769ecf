package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestChecker_AllHealthy(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewChecker(map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return nil }),
	}, time.Second, reg)

	r := c.Check(context.Background())
	require.True(t, r.Healthy)
	require.Equal(t, "ok", r.Checks["postgres"])
	require.Equal(t, "ok", r.Checks["redis"])
	require.Equal(t, float64(1), testutil.ToFloat64(c.up.WithLabelValues("redis")))
}

func TestChecker_OneDown(t *testing.T) {
	c := NewChecker(map[string]Pinger{
		"postgres": PingFunc(func(context.Context) error { return nil }),
		"redis":    PingFunc(func(context.Context) error { return errors.New("refused") }),
	}, time.Second, nil)

	r := c.Check(context.Background())
	require.False(t, r.Healthy)
	require.Equal(t, "ok", r.Checks["postgres"])
	require.Contains(t, r.Checks["redis"], "refused")
	require.Equal(t, float64(0), testutil.ToFloat64(c.up.WithLabelValues("redis")))
}

func TestChecker_Timeout(t *testing.T) {
	c := NewChecker(map[string]Pinger{
		"slow": PingFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	}, 10*time.Millisecond, nil)

	r := c.Check(context.Background())
	require.False(t, r.Healthy)
	require.Contains(t, r.Checks["slow"], "deadline")
}
