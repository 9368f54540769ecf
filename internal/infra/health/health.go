package health

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Report struct {
	Healthy bool              `json:"healthy"`
	Checks  map[string]string `json:"checks"`
	Time    int64             `json:"time"`
}

// Checker pings every named dependency concurrently.
type Checker struct {
	deps    map[string]Pinger
	timeout time.Duration
	up      *prometheus.GaugeVec
}

func NewChecker(deps map[string]Pinger, timeout time.Duration, reg prometheus.Registerer) *Checker {
	c := &Checker{
		deps:    deps,
		timeout: timeout,
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "account_dependency_up",
			Help: "1 when the dependency answered the last health probe",
		}, []string{"dependency"}),
	}
	if reg != nil {
		reg.MustRegister(c.up)
	}
	return c
}

func (c *Checker) Check(ctx context.Context) Report {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	names := make([]string, 0, len(c.deps))
	for name := range c.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]error, len(names))
	var g errgroup.Group
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			results[i] = c.deps[name].Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Healthy: true, Checks: make(map[string]string, len(names)), Time: time.Now().Unix()}
	for i, name := range names {
		if err := results[i]; err != nil {
			report.Healthy = false
			report.Checks[name] = fmt.Sprintf("down: %v", err)
			c.up.WithLabelValues(name).Set(0)
			continue
		}
		report.Checks[name] = "ok"
		c.up.WithLabelValues(name).Set(1)
	}
	return report
}
