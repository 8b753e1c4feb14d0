// Package mirrord parses daemon flags and launches the mirror runtime.
package mirrord

import (
	"context"
	"flag"
	"time"

	"github.com/louisbranch/listmirror/internal/app"
	entrypoint "github.com/louisbranch/listmirror/internal/platform/cmd"
)

// Config holds mirror daemon configuration.
type Config struct {
	Port          int           `env:"LISTMIRROR_PORT" envDefault:"8090"`
	HTTPPort      int           `env:"LISTMIRROR_HTTP_PORT" envDefault:"8091"`
	RemoteURL     string        `env:"LISTMIRROR_REMOTE_URL"`
	RemoteTimeout time.Duration `env:"LISTMIRROR_REMOTE_TIMEOUT" envDefault:"10s"`
	RealtimeURL   string        `env:"LISTMIRROR_REALTIME_URL"`
	DBPath        string        `env:"LISTMIRROR_DB_PATH" envDefault:"data/mirrord.db"`
	ListName      string        `env:"LISTMIRROR_LIST_NAME" envDefault:"records"`
	KafkaBrokers  []string      `env:"LISTMIRROR_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string        `env:"LISTMIRROR_KAFKA_TOPIC"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The mirrord health gRPC server port")
	fs.IntVar(&cfg.HTTPPort, "http-port", cfg.HTTPPort, "The mirrord HTTP control port")
	fs.StringVar(&cfg.RemoteURL, "remote-url", cfg.RemoteURL, "The remote collection API base URL")
	fs.DurationVar(&cfg.RemoteTimeout, "remote-timeout", cfg.RemoteTimeout, "Remote collection request timeout")
	fs.StringVar(&cfg.RealtimeURL, "realtime-url", cfg.RealtimeURL, "The remote collection websocket feed URL")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The notification journal SQLite database path")
	fs.StringVar(&cfg.ListName, "list-name", cfg.ListName, "The mirrored list name")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for published notifications")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the mirror daemon runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMirrord, func(context.Context) error {
		return app.Run(ctx, app.RuntimeConfig{
			Port:          cfg.Port,
			HTTPPort:      cfg.HTTPPort,
			RemoteURL:     cfg.RemoteURL,
			RemoteTimeout: cfg.RemoteTimeout,
			RealtimeURL:   cfg.RealtimeURL,
			DBPath:        cfg.DBPath,
			ListName:      cfg.ListName,
			KafkaBrokers:  cfg.KafkaBrokers,
			KafkaTopic:    cfg.KafkaTopic,
		})
	})
}
