package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rtrove/internal/bootstrap"
	"rtrove/internal/config"
	"rtrove/internal/seed"
	"rtrove/internal/server"
	"rtrove/internal/storage"
)

var (
	seedOnStart bool

	seedUsers    int
	seedProjects int
	seedPosts    int
	seedValue    int64
	seedClean    bool

	dumpPrefix      string
	dumpCollections bool

	rootCmd = &cobra.Command{
		Use:           "rtrove",
		Short:         "Local data store for creator projects",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve the store over HTTP",
		RunE:  runServe,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with demo data",
		RunE:  runSeed,
	}

	dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Print stored keys and values as JSON",
		RunE:  runDump,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "rtrove", version)
		},
	}
)

func init() {
	serveCmd.Flags().BoolVar(&seedOnStart, "seed", false, "seed demo data when the store is empty")

	seedCmd.Flags().IntVar(&seedUsers, "users", 0, "number of users (defaults to SEED_USERS)")
	seedCmd.Flags().IntVar(&seedProjects, "projects", 0, "number of projects (defaults to the user count)")
	seedCmd.Flags().IntVar(&seedPosts, "posts", 0, "number of posts (defaults to twice the user count)")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed for reproducible data")
	seedCmd.Flags().BoolVar(&seedClean, "clean", false, "remove all stored data first")

	dumpCmd.Flags().StringVar(&dumpPrefix, "prefix", storage.KeyPrefix, "only dump keys with this prefix")
	dumpCmd.Flags().BoolVar(&dumpCollections, "collections", false, "only dump the collection keys, missing ones as null")

	rootCmd.AddCommand(serveCmd, seedCmd, dumpCmd, versionCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Seed: seedOnStart, Version: version})
	if err != nil {
		return err
	}

	srv := server.NewServer(cfg, rt.Store, rt.Flags)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	serveErr := srv.Start()
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(closeCtx); err != nil && serveErr == nil {
		return err
	}
	return serveErr
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{Version: version})
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close(context.Background()) }()

	if seedClean {
		if err := clearStore(ctx, rt.KV); err != nil {
			return err
		}
		if err := rt.Store.Load(ctx); err != nil {
			return err
		}
	}

	opts := seed.Options{NumUsers: seedUsers, NumProjects: seedProjects, NumPosts: seedPosts, Seed: seedValue}
	if opts.NumUsers == 0 {
		opts.NumUsers = cfg.SeedUsers
	}
	if opts.NumProjects == 0 {
		opts.NumProjects = opts.NumUsers
	}
	if opts.NumPosts == 0 {
		opts.NumPosts = opts.NumUsers * 2
	}

	sum, err := seed.Run(ctx, rt.Store, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(sum); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "All seeded users have the password: %s\n", seed.DefaultPassword)
	return nil
}

func clearStore(ctx context.Context, kv storage.KV) error {
	keys, err := kv.Keys(ctx, storage.KeyPrefix)
	if err != nil {
		return err
	}
	batch := storage.NewBatch()
	for _, k := range keys {
		batch.Delete(k)
	}
	return kv.Apply(ctx, batch)
}

func runDump(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	kv, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = kv.Close() }()

	var out map[string]json.RawMessage
	if dumpCollections {
		out, err = dumpKeys(ctx, kv, storage.CollectionKeys)
	} else {
		out, err = dump(ctx, kv, dumpPrefix)
	}
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// dump reads every key under prefix. Values that are not JSON are kept as
// strings.
func dump(ctx context.Context, kv storage.KV, prefix string) (map[string]json.RawMessage, error) {
	keys, err := kv.Keys(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return dumpKeys(ctx, kv, keys)
}

// dumpKeys reads the given keys. Absent keys map to null.
func dumpKeys(ctx context.Context, kv storage.KV, keys []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		raw, err := kv.Get(ctx, k)
		if errors.Is(err, storage.ErrNotFound) {
			out[k] = json.RawMessage("null")
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", k, err)
		}
		if !json.Valid(raw) {
			raw, _ = json.Marshal(string(raw))
		}
		out[k] = raw
	}
	return out, nil
}
