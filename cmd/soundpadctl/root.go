package main

import (
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/spf13/cobra"

	"github.com/codewandler/soundpad-go/client"
	"github.com/codewandler/soundpad-go/core/transport"
	"github.com/codewandler/soundpad-go/internal/config"
	"github.com/codewandler/soundpad-go/ports/kv"
)

type Config struct {
	Network      string        `env:"SOUNDPAD_NETWORK" envDefault:"unix"`
	Socket       string        `env:"SOUNDPAD_SOCKET"`
	Debounce     time.Duration `env:"SOUNDPAD_DEBOUNCE" envDefault:"50ms"`
	ChunkSize    int           `env:"SOUNDPAD_CHUNK_SIZE" envDefault:"512"`
	WriteTimeout time.Duration `env:"SOUNDPAD_WRITE_TIMEOUT" envDefault:"50ms"`
	LogLevel     slog.Level    `env:"SOUNDPAD_LOG_LEVEL" envDefault:"warn"`

	NatsURL       string `env:"NATS_URL"`
	SubjectPrefix string `env:"SOUNDPAD_SUBJECT_PREFIX" envDefault:"soundpad"`
	KvBucket      string `env:"SOUNDPAD_KV_BUCKET"`
	MetricsAddr   string `env:"SOUNDPAD_METRICS_ADDR" envDefault:":9464"`
}

type app struct {
	cfg    Config
	log    *slog.Logger
	output string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var socket string

	root := &cobra.Command{
		Use:           "soundpadctl",
		Short:         "Control Soundpad through its remote control pipe",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(&a.cfg); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if socket != "" {
				a.cfg.Socket = socket
			}
			a.log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: a.cfg.LogLevel}))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&socket, "socket", "", "path or address of the remote control pipe (env SOUNDPAD_SOCKET)")
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "yaml", "output format: yaml, json, text")

	root.AddCommand(
		newSendCmd(a),
		newCatalogCmd(a),
		newServeCmd(a),
	)
	return root
}

// dial connects to the remote control pipe and starts a client on it.
func (a *app) dial(opts client.Options) (*client.Client, error) {
	if a.cfg.Socket == "" {
		return nil, fmt.Errorf("no socket configured, use --socket or SOUNDPAD_SOCKET")
	}

	conn, err := net.Dial(a.cfg.Network, a.cfg.Socket)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", a.cfg.Socket, err)
	}

	t := transport.NewStream(conn, transport.StreamOptions{
		WriteTimeout: a.cfg.WriteTimeout,
		Log:          a.log,
	})

	opts.Logger = a.log
	opts.Debounce = a.cfg.Debounce
	opts.ChunkSize = a.cfg.ChunkSize
	if opts.Store == nil {
		opts.Store = kv.NewMemStore()
	}
	return client.New(t, opts), nil
}
