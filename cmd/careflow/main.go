package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/Fadil369/brainsait-unified-ecosystem-sub000"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/action"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/comms"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/config"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/engine"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/monitor"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/server"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/internal/store"
	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/log"
)

type careflow struct {
	cfg        *config.Config
	templates  *action.TemplateStore
	audit      store.AuditStore
	archive    store.Archive
	engine     *engine.Engine
	monitor    *monitor.Monitor
	apiServer  *server.Server
	httpServer *http.Server
	quit       chan os.Signal
}

var (
	ErrOpenArchive   = errors.New("failed to open archive bucket")
	ErrLoadTemplates = errors.New("failed to load message templates")
	ErrCreateActions = errors.New("failed to create action registry")
)

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &careflow{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *careflow) run() error {
	if err := s.initializeStores(); err != nil {
		return err
	}
	if err := s.initializeEngine(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *careflow) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Careflow engine starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("audit_redis_addr", s.cfg.Audit.Addr),
		slog.Int("audit_redis_db", s.cfg.Audit.DB),
		slog.String("archive_bucket", s.cfg.Archive.BucketURL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort),
		slog.Int("max_concurrent", s.cfg.MaxConcurrentWorkflows))
}

func (s *careflow) initializeStores() error {
	s.audit = store.NewRedisAuditStore(&s.cfg.Audit)

	archive, err := store.OpenBlobArchive(
		context.Background(), s.cfg.Archive.BucketURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenArchive, err)
	}
	s.archive = archive
	return nil
}

func (s *careflow) initializeEngine() error {
	if err := s.loadTemplates(); err != nil {
		return err
	}

	var comm comms.Communicator = &comms.LogCommunicator{}
	if s.cfg.Comms.GatewayURL != "" {
		comm = comms.NewHTTPCommunicator(
			s.cfg.Comms.GatewayURL, s.cfg.Comms.RequestTimeout)
	}
	var compliance comms.ComplianceChecker
	if s.cfg.Comms.ComplianceURL != "" {
		compliance = comms.NewHTTPComplianceChecker(
			s.cfg.Comms.ComplianceURL, s.cfg.Comms.RequestTimeout)
	}

	actions, err := action.NewRegistry(
		action.NewMessageAction(s.templates, comm, compliance),
		&action.WaitAction{},
		&action.DecisionAction{},
		&action.EscalationAction{},
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreateActions, err)
	}

	eng := engine.New(engine.Dependencies{
		Config:  s.cfg,
		Actions: actions,
		Audit:   s.audit,
		Archive: s.archive,
	})
	s.monitor = monitor.New(s.cfg, nil, s.archive, eng.Triggers())
	eng.SetObserver(s.monitor)

	s.engine = eng
	s.engine.Start()
	s.monitor.Start()
	return nil
}

// loadTemplates reads message templates from the JSON file named by
// TEMPLATES_FILE, when set
func (s *careflow) loadTemplates() error {
	s.templates = action.NewTemplateStore()

	path := os.Getenv("TEMPLATES_FILE")
	if path == "" {
		return nil
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadTemplates, err)
	}
	var templates []*action.Template
	if err := json.Unmarshal(buf, &templates); err != nil {
		return fmt.Errorf("%w: %w", ErrLoadTemplates, err)
	}
	for _, tpl := range templates {
		if err := s.templates.Register(tpl); err != nil {
			return fmt.Errorf("%w: %w", ErrLoadTemplates, err)
		}
	}

	slog.Info("Message templates loaded",
		slog.String("path", path),
		slog.Int("count", len(templates)))
	return nil
}

func (s *careflow) startServer() {
	s.apiServer = server.NewServer(s.engine, s.monitor, s.audit)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *careflow) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()
	s.monitor.Stop()

	if err := s.engine.Stop(); err != nil {
		slog.Error("Engine shutdown failed", log.Error(err))
	}

	if err := s.audit.Close(); err != nil {
		slog.Error("Audit store close failed", log.Error(err))
	}
	if err := s.archive.Close(); err != nil {
		slog.Error("Archive close failed", log.Error(err))
	}

	slog.Info("Server exited")
}
