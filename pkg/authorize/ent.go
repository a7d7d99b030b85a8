package authorize

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	psqlwatcher "github.com/IguteChung/casbin-psql-watcher"
	casbin "github.com/casbin/casbin/v2"
	entadapter "github.com/casbin/ent-adapter"
)

// policyLoadHealthy tracks the health state of Casbin policy loading.
// When policy reload fails, this is set to false to trigger health check failures.
var policyLoadHealthy atomic.Bool

func init() {
	policyLoadHealthy.Store(true)
}

// IsPolicyHealthy returns true if the Casbin policy is in a healthy state.
// Returns false if the last policy reload attempt failed.
func IsPolicyHealthy() bool {
	return policyLoadHealthy.Load()
}

// CleanupFunc is a function that cleans up resources.
type CleanupFunc func(ctx context.Context)

// EnforcerOptions selects the policy store and model for NewEnforcer.
type EnforcerOptions struct {
	ModelPath string
	Driver    string // "postgres" or "sqlite3"
	DSN       string
	// Watch subscribes to postgres NOTIFY so every instance reloads policy
	// after a change. Ignored for sqlite3.
	Watch bool
}

// NewEnforcer creates a Casbin DistributedEnforcer backed by the ent adapter.
// The returned cleanup function should be called on shutdown.
func NewEnforcer(opts EnforcerOptions) (*casbin.DistributedEnforcer, CleanupFunc, error) {
	if opts.Driver == "" {
		opts.Driver = "postgres"
	}

	a, err := entadapter.NewAdapter(opts.Driver, opts.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("casbin adapter: %w", err)
	}

	m, err := LoadModel(opts.ModelPath)
	if err != nil {
		return nil, nil, err
	}

	e, err := casbin.NewDistributedEnforcer(m, a)
	if err != nil {
		return nil, nil, err
	}

	e.EnableAutoSave(true)
	e.EnableEnforce(true)

	if !opts.Watch || opts.Driver != "postgres" {
		return e, func(context.Context) {}, nil
	}

	w, err := psqlwatcher.NewWatcherWithConnString(context.Background(), opts.DSN, psqlwatcher.Option{
		Channel: "casbin_policy_update",
	})
	if err != nil {
		return nil, nil, err
	}

	err = w.SetUpdateCallback(func(msg string) {
		slog.Debug("casbin policy update received", "message", msg)
		if err := e.LoadPolicy(); err != nil {
			slog.Error("failed to reload policy after watcher notification", "error", err)
			policyLoadHealthy.Store(false)
		} else {
			policyLoadHealthy.Store(true)
		}
	})
	if err != nil {
		return nil, nil, err
	}

	if err := e.SetWatcher(w); err != nil {
		return nil, nil, err
	}

	cleanup := func(ctx context.Context) {
		slog.Info("closing casbin policy watcher")
		w.Close()
		e.StopAutoLoadPolicy()
	}

	return e, cleanup, nil
}
