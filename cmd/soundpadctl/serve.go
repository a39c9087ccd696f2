package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	natsadapter "github.com/codewandler/soundpad-go/adapters/nats"
	promadapter "github.com/codewandler/soundpad-go/adapters/prometheus"
	"github.com/codewandler/soundpad-go/client"
	"github.com/codewandler/soundpad-go/ports/kv"
)

func newServeCmd(a *app) *cobra.Command {
	var refresh time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the remote control pipe on NATS",
		Long: `Serve keeps one connection to Soundpad open and answers requests published on
<prefix>.request. Prometheus metrics are served on SOUNDPAD_METRICS_ADDR.
With --refresh the catalog is fetched periodically and stored in the
JetStream bucket SOUNDPAD_KV_BUCKET.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), refresh)
		},
	}

	cmd.Flags().DurationVar(&refresh, "refresh", 0, "catalog refresh interval, 0 disables")
	return cmd
}

func (a *app) serve(ctx context.Context, refresh time.Duration) error {
	connect := natsadapter.ConnectDefault()
	if a.cfg.NatsURL != "" {
		connect = natsadapter.ConnectURL(a.cfg.NatsURL)
	}
	connect = natsadapter.ReuseConnection(connect)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var store kv.Store = kv.NewMemStore()
	if a.cfg.KvBucket != "" {
		s, err := natsadapter.NewKvStore(ctx, natsadapter.KvConfig{Connect: connect, Bucket: a.cfg.KvBucket})
		if err != nil {
			return fmt.Errorf("open catalog bucket: %w", err)
		}
		defer s.Close()
		store = s
	}

	c, err := a.dial(client.Options{
		Metrics: promadapter.NewPipeMetrics(reg),
		Store:   store,
	})
	if err != nil {
		return err
	}

	closeClient := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.Close(ctx)
	}

	sender, err := c.Sender()
	if err != nil {
		return errors.Join(err, closeClient())
	}
	bridge, err := natsadapter.NewBridge(natsadapter.BridgeConfig{
		Connect:       connect,
		Log:           a.log,
		SubjectPrefix: a.cfg.SubjectPrefix,
		Sender:        sender,
	})
	sender.Close()
	if err != nil {
		return errors.Join(err, closeClient())
	}

	srv := &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bridge.Run(ctx)
	})

	g.Go(func() error {
		a.log.Info("metrics listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if refresh > 0 {
		g.Go(func() error {
			return refreshCatalog(ctx, a.log, c, refresh)
		})
	}

	return errors.Join(g.Wait(), closeClient())
}

func refreshCatalog(ctx context.Context, log *slog.Logger, c *client.Client, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		snap, err := c.Catalog(ctx, "")
		switch {
		case err != nil && ctx.Err() == nil:
			log.Warn("catalog refresh failed", slog.Any("error", err))
		case err == nil && snap.Changed:
			log.Info("catalog stored", slog.String("fingerprint", snap.Fingerprint), slog.Uint64("revision", snap.Revision))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
