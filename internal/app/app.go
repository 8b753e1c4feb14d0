// Package app wires the mirror daemon runtime: the journal, the remote
// client, the mirror store, optional Kafka publishing, the optional realtime
// feed, and the local control surfaces.
package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/louisbranch/listmirror/internal/diag"
	"github.com/louisbranch/listmirror/internal/mirror"
	"github.com/louisbranch/listmirror/internal/mutation"
	"github.com/louisbranch/listmirror/internal/notify"
	"github.com/louisbranch/listmirror/internal/notify/kafkabus"
	"github.com/louisbranch/listmirror/internal/realtime"
	"github.com/louisbranch/listmirror/internal/remote"
	"github.com/louisbranch/listmirror/internal/storage"
	mirrorsqlite "github.com/louisbranch/listmirror/internal/storage/sqlite"
)

// RuntimeConfig controls daemon startup and dependencies.
type RuntimeConfig struct {
	Port          int
	HTTPPort      int
	RemoteURL     string
	RemoteTimeout time.Duration
	RealtimeURL   string
	DBPath        string
	ListName      string
	KafkaBrokers  []string
	KafkaTopic    string
}

const (
	defaultMirrordPort     = 8090
	defaultMirrordHTTPPort = 8091
	defaultMirrordDB       = "data/mirrord.db"
	defaultListName        = "records"
	httpShutdownTimeout    = 5 * time.Second
)

// Run starts the daemon and blocks until ctx is cancelled or a server fails.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(cfg.RemoteURL) == "" {
		return fmt.Errorf("remote url is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultMirrordPort
	}
	if cfg.HTTPPort <= 0 {
		cfg.HTTPPort = defaultMirrordHTTPPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultMirrordDB
	}
	if strings.TrimSpace(cfg.ListName) == "" {
		cfg.ListName = defaultListName
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create mirror storage dir: %w", err)
		}
	}

	journal, err := mirrorsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open mirror sqlite store: %w", err)
	}
	defer func() {
		if closeErr := journal.Close(); closeErr != nil {
			log.Printf("close mirror sqlite store: %v", closeErr)
		}
	}()

	client, err := remote.NewClient(remote.Config{
		BaseURL: cfg.RemoteURL,
		Timeout: cfg.RemoteTimeout,
	})
	if err != nil {
		return fmt.Errorf("create remote client: %w", err)
	}

	sink := diag.Log("mirrord")
	actions := mirror.DefaultActions()
	store := mirror.NewStore(mirror.Reducers{Actions: actions, Diag: sink})

	dispatchers := []notify.Dispatcher{store}
	if len(cfg.KafkaBrokers) > 0 && strings.TrimSpace(cfg.KafkaTopic) != "" {
		publisher := kafkabus.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, sink)
		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Printf("close kafka publisher: %v", closeErr)
			}
		}()
		dispatchers = append(dispatchers, publisher)
	}

	var dispatch notify.Dispatcher = storage.NewRecorder(journal, notify.Multi(dispatchers), sink)

	records, err := client.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap mirror from remote: %w", err)
	}
	store.Reset(records)
	log.Printf("mirror bootstrapped with %d records", len(records))

	hasSocket := strings.TrimSpace(cfg.RealtimeURL) != ""

	deleteOp := mutation.NewDelete(mutation.DeleteConfig{
		Dispatch:      dispatch,
		API:           client.DeleteRecord,
		StartAction:   actions.DeleteStart,
		SuccessAction: actions.DeleteSuccess,
		ErrorAction:   actions.DeleteError,
		Diag:          sink,
	})
	updateOp := mutation.NewUpdate(mutation.UpdateConfig{
		ListName:    cfg.ListName,
		Dispatch:    dispatch,
		API:         client.UpdateRecord,
		StartAction: actions.UpdateStart,
		EndAction:   actions.UpdateEnd,
		ErrorAction: actions.UpdateError,
		HasSocket:   hasSocket,
		Diag:        sink,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if hasSocket {
		feed, err := realtime.NewFeed(cfg.RealtimeURL, cfg.ListName, dispatch, actions, sink)
		if err != nil {
			return fmt.Errorf("create realtime feed: %w", err)
		}
		go func() {
			if feedErr := feed.Run(runCtx); feedErr != nil && runCtx.Err() == nil {
				log.Printf("realtime feed stopped: %v", feedErr)
			}
		}()
	}

	control := &controlServer{
		store:   store,
		journal: journal,
		delete:  deleteOp,
		update:  updateOp,
	}
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: control.routes(),
	}
	httpErr := make(chan error, 1)
	go func() {
		httpErr <- httpServer.ListenAndServe()
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
		defer shutdownCancel()
		if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Printf("shutdown control server: %v", shutdownErr)
		}
		<-httpErr
	}()

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on mirrord port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("mirrord.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("mirrord listening at %v, control at :%d", listener.Addr(), cfg.HTTPPort)

	select {
	case <-runCtx.Done():
		return runCtx.Err()
	case err := <-serveErr:
		serveErr <- err
		return fmt.Errorf("serve mirrord: %w", err)
	case err := <-httpErr:
		httpErr <- err
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve control: %w", err)
	}
}
