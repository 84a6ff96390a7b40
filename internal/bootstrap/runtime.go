package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"rtrove/internal/config"
	"rtrove/internal/featureflags"
	"rtrove/internal/observability"
	"rtrove/internal/seed"
	"rtrove/internal/storage"
	"rtrove/internal/store"
)

// Options control runtime initialization behavior.
type Options struct {
	// Seed fills an empty store with cfg.SeedUsers demo users.
	Seed    bool
	Version string
}

// Runtime is everything a command needs once configuration is loaded.
type Runtime struct {
	Config *config.Config
	KV     storage.KV
	Store  *store.Store
	Flags  *featureflags.Manager

	shutdownTracing func(context.Context) error
}

// InitRuntime opens the configured backend, loads the store and optionally
// seeds it.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	if err := observability.SetLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	shutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "rtrove",
		ServiceVersion: opts.Version,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExport,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampler,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	kv, err := storage.Open(ctx, cfg)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("storage open failed: %w", err)
	}

	flags := featureflags.NewManager(cfg.FeatureFlags)
	st := store.New(kv, store.Options{Flags: flags})
	rt := &Runtime{Config: cfg, KV: kv, Store: st, Flags: flags, shutdownTracing: shutdown}

	if err := st.Load(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	if opts.Seed && len(st.GetAllUsers()) == 0 {
		if _, err := seed.Run(ctx, st, seed.Options{
			NumUsers:    cfg.SeedUsers,
			NumProjects: cfg.SeedUsers,
			NumPosts:    cfg.SeedUsers * 2,
		}); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	observability.GlobalLogger.Info("runtime ready",
		"backend", kv.Backend(),
		"env", cfg.Env,
		"users", len(st.GetAllUsers()),
	)
	return rt, nil
}

// Close releases the backend and flushes traces.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.KV != nil {
		errs = append(errs, r.KV.Close())
	}
	if r.shutdownTracing != nil {
		errs = append(errs, r.shutdownTracing(ctx))
	}
	return errors.Join(errs...)
}
