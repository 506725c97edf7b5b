package cmd

import (
	"context"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	rangerhttp "github.com/ranger-acl/rangeracl/internal/adapter/inbound/http"
	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/audit"
	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/cel"
	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/memory"
	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/ranger"
	"github.com/ranger-acl/rangeracl/internal/config"
	"github.com/ranger-acl/rangeracl/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision point HTTP server",
	Long: `Start the out-of-band S3 authorization decision point.

Loads configuration from environment variables, connects to the Ranger
admin instance, periodically refreshes the policy snapshot for the
configured service, and serves the /check decision endpoint.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), gracefulSignals()...)
	go func() {
		<-ctx.Done()
		stop()
	}()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	refreshInterval, err := time.ParseDuration(cfg.Ranger.RefreshInterval)
	if err != nil {
		refreshInterval = 30 * time.Second
		logger.Warn("invalid ranger.refresh_interval, using default", "value", cfg.Ranger.RefreshInterval)
	}
	requestTimeout, err := time.ParseDuration(cfg.Ranger.RequestTimeout)
	if err != nil {
		requestTimeout = 10 * time.Second
		logger.Warn("invalid ranger.request_timeout, using default", "value", cfg.Ranger.RequestTimeout)
	}
	flushInterval, err := time.ParseDuration(cfg.Audit.FlushInterval)
	if err != nil {
		flushInterval = time.Second
		logger.Warn("invalid audit.flush_interval, using default", "value", cfg.Audit.FlushInterval)
	}
	sendTimeout, err := time.ParseDuration(cfg.Audit.SendTimeout)
	if err != nil {
		sendTimeout = 100 * time.Millisecond
		logger.Warn("invalid audit.send_timeout, using default", "value", cfg.Audit.SendTimeout)
	}
	decisionTTL, err := time.ParseDuration(cfg.Cache.DecisionTTL)
	if err != nil {
		decisionTTL = 300 * time.Second
		logger.Warn("invalid cache.decision_ttl, using default", "value", cfg.Cache.DecisionTTL)
	}
	subjectTTL, err := time.ParseDuration(cfg.Cache.SubjectTTL)
	if err != nil {
		subjectTTL = 300 * time.Second
		logger.Warn("invalid cache.subject_ttl, using default", "value", cfg.Cache.SubjectTTL)
	}

	rangerClient := ranger.New(cfg.Ranger.Host, cfg.Ranger.User, cfg.Ranger.Password,
		ranger.WithTimeout(requestTimeout))

	snapshotStore := memory.NewSnapshotStore()
	decisionCache := memory.NewDecisionCache(cfg.Cache.DecisionCapacity, decisionTTL)
	subjectCache := memory.NewSubjectCache(cfg.Cache.SubjectCapacity, subjectTTL)

	condEval, err := cel.NewConditionEvaluator()
	if err != nil {
		return fmt.Errorf("failed to build condition evaluator: %w", err)
	}

	auditSink := audit.NewSolrSink(cfg.Audit.SolrURL)
	auditEmitter := service.NewAuditEmitter(auditSink, logger,
		service.WithChannelSize(cfg.Audit.ChannelSize),
		service.WithBatchSize(cfg.Audit.BatchSize),
		service.WithFlushInterval(flushInterval),
		service.WithSendTimeout(sendTimeout),
		service.WithWarningThreshold(cfg.Audit.WarningThreshold),
	)
	auditEmitter.Start(ctx)
	defer auditEmitter.Stop()

	refresher := service.NewPolicyRefresher(
		rangerClient,
		snapshotStore,
		cfg.Ranger.ServiceName,
		cfg.Ranger.ServiceDefName,
		0,
		refreshInterval,
		logger,
		decisionCache.Clear,
	)
	if err := refresher.Start(ctx, cfg.Ranger.ServiceDefName); err != nil {
		return fmt.Errorf("failed to start policy refresher: %w", err)
	}
	defer refresher.Stop()

	subjectResolver := service.NewSubjectResolver(rangerClient, subjectCache)

	pipeline := service.NewPipeline(snapshotStore, subjectResolver, decisionCache, condEval, auditEmitter, logger, cfg.Server.AgentHost)

	metrics := rangerhttp.NewMetrics(prometheus.DefaultRegisterer)

	checkHandler := rangerhttp.NewCheckHandler(pipeline, cfg.Ranger.ServiceName, metrics)
	healthChecker := rangerhttp.NewHealthChecker(snapshotStore, cfg.Ranger.ServiceName, decisionCache, subjectCache, auditEmitter, Version)

	var whitelist *rangerhttp.IPWhitelist
	if len(cfg.IPWhitelist) > 0 {
		whitelist = rangerhttp.NewIPWhitelist(cfg.IPWhitelist)
	}

	mux := rangerhttp.NewMux(checkHandler, healthChecker, metrics, whitelist)

	server := &stdhttp.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("rangeracl listening", "addr", cfg.Server.ListenAddr, "service", cfg.Ranger.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("rangeracl stopped")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
