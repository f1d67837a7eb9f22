package health

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/bulkmart/catalog-platform/internal/errors"
	"github.com/bulkmart/catalog-platform/internal/metrics"
	repository "github.com/bulkmart/catalog-platform/internal/repositories"
)

// Probe reports whether the backing store is reachable. A database ping is
// the usual implementation.
type Probe func(ctx context.Context) error

// Monitor decides, before each query or on a fixed interval, whether reads go
// to the remote backing store or the fallback snapshot. Its last-known status
// is advisory, last-write-wins state; each call still gets the provider it
// was resolved against, so a flip mid-flight never swaps a query's store.
type Monitor struct {
	probe    Probe
	remote   repository.ProductStore
	fallback repository.ProductStore

	timeout  time.Duration
	interval time.Duration

	online atomic.Bool
}

func NewMonitor(probe Probe, remote, fallback repository.ProductStore, timeout, interval time.Duration) *Monitor {
	m := &Monitor{
		probe:    probe,
		remote:   remote,
		fallback: fallback,
		timeout:  timeout,
		interval: interval,
	}

	// optimistic until the first probe says otherwise
	m.online.Store(true)

	return m
}

// CheckConnection runs the reachability probe. It never returns an error:
// probe failures resolve to false.
func (m *Monitor) CheckConnection(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.probe(probeCtx)

	online := err == nil

	wasOnline := m.online.Swap(online)

	if online != wasOnline {
		if online {
			slog.Info("Backing store reachable again, resuming remote reads")
			metrics.SetFallbackActive(false)
		} else {
			slog.Warn("Backing store unreachable, serving reads from fallback snapshot",
				slog.String("error", err.Error()))
			metrics.SetFallbackActive(true)
		}
	}

	return online
}

// Online reports the last-known status without probing.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Reader probes and returns the provider reads should use for this call.
func (m *Monitor) Reader(ctx context.Context) repository.ProductReader {
	if m.CheckConnection(ctx) {
		return m.remote
	}

	return m.fallback
}

// Provider returns the name of the store Reader would pick, for metrics labels.
func (m *Monitor) Provider() string {
	if m.Online() {
		return metrics.ProviderRemote
	}

	return metrics.ProviderFallback
}

// Writer returns the remote store, or an explicit failure while offline.
// Writes are never attempted against the fallback snapshot.
func (m *Monitor) Writer(ctx context.Context) (repository.ProductStore, error) {
	if !m.CheckConnection(ctx) {
		return nil, errors.ServiceUnavailableError("backing store is unreachable; writes are disabled")
	}

	return m.remote, nil
}

// Run re-checks reachability on a fixed interval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.CheckConnection(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckConnection(ctx)
		}
	}
}
