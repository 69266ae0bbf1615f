package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"supplysight/cmd/insight-service/internal/biz"
	"supplysight/cmd/insight-service/internal/conf"
	"supplysight/cmd/insight-service/internal/data"
	"supplysight/cmd/insight-service/internal/domain"
	"supplysight/cmd/insight-service/internal/server"
	"supplysight/cmd/insight-service/internal/service"
	"supplysight/pkg/observability"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Version 构建时注入
	Version = "dev"

	configPath = flag.String("config", "configs/insight-service.yaml", "path to config file")
)

func main() {
	flag.Parse()

	cfg, err := conf.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("insight-service starting", zap.String("version", Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "insight-service",
		ServiceVersion: Version,
		Environment:    os.Getenv("DEPLOY_ENV"),
		Endpoint:       cfg.Observability.OTLPEndpoint,
		SamplingRate:   cfg.Observability.SampleRate,
		Enabled:        cfg.Observability.TracingEnabled,
	})
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	table, err := loadTable(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to load records", zap.Error(err))
	}
	logger.Info("records loaded",
		zap.Int("total_records", len(table)),
		zap.Int("weeks", len(table.Weeks())),
	)

	// 组装用例
	policy := biz.DefaultPolicy()
	scoring := biz.NewScoringUsecase(policy, logger)
	rootCause := biz.NewRootCauseUsecase(policy, scoring)
	anomaly := biz.NewAnomalyUsecase(policy, biz.DetectorConfig{
		Contamination: cfg.Analytics.Contamination,
		TreeCount:     cfg.Analytics.TreeCount,
		Seed:          cfg.Analytics.Seed,
	}, logger)
	simulation := biz.NewSimulationUsecase(policy, scoring)

	cache := newCache(cfg, logger)
	narrative := data.NewNarrativeGenerator(data.LLMConfig{
		BaseURL:            cfg.LLM.BaseURL,
		APIKey:             cfg.LLM.APIKey,
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		Timeout:            cfg.LLM.Timeout,
		BreakerMaxRequests: cfg.LLM.BreakerMaxRequests,
		BreakerInterval:    cfg.LLM.BreakerInterval,
		BreakerTimeout:     cfg.LLM.BreakerTimeout,
		BreakerFailures:    cfg.LLM.BreakerFailures,
	}, logger)
	insight := biz.NewInsightUsecase(scoring, rootCause, anomaly, narrative, cache, cfg.Cache.InsightTTL, logger)

	svc := service.NewInsightService(table, scoring, rootCause, anomaly, simulation, insight, logger)

	httpServer := server.NewHTTPServer(server.HTTPConfig{
		Addr:         cfg.Server.HTTPAddr,
		Mode:         cfg.Server.Mode,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, svc, logger)

	metricsServer := &http.Server{
		Addr:    cfg.Server.MetricsAddr,
		Handler: promhttp.Handler(),
	}

	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("metrics server starting", zap.String("addr", metricsServer.Addr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", zap.Error(err))
	}

	logger.Info("insight-service stopped")
}

// initLogger 创建 zap 日志器
func initLogger(cfg conf.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Encoding == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{
		"service": "insight-service",
	}
	return zapCfg.Build()
}

// loadTable 按配置的驱动加载记录表
func loadTable(ctx context.Context, cfg *conf.Config, logger *zap.Logger) (domain.Table, error) {
	var source domain.RecordSource

	switch cfg.Data.Driver {
	case "csv":
		source = data.NewCSVSource(cfg.Data.CSVPath)
	case "postgres":
		db, err := data.NewDB(&data.DBConfig{
			Host:     cfg.Data.Database.Host,
			Port:     cfg.Data.Database.Port,
			User:     cfg.Data.Database.User,
			Password: cfg.Data.Database.Password,
			Database: cfg.Data.Database.DBName,
			SSLMode:  cfg.Data.Database.SSLMode,
		})
		if err != nil {
			return nil, err
		}
		source = data.NewPostgresSource(db)
	case "clickhouse":
		ch, err := data.NewClickHouseClient(&data.ClickHouseConfig{
			Addr:     cfg.Data.ClickHouse.Addr,
			Database: cfg.Data.ClickHouse.Database,
			Username: cfg.Data.ClickHouse.Username,
			Password: cfg.Data.ClickHouse.Password,
		})
		if err != nil {
			return nil, err
		}
		source = data.NewClickHouseSource(ch)
	default:
		return nil, fmt.Errorf("unknown data driver %q", cfg.Data.Driver)
	}

	logger.Info("loading records", zap.String("driver", cfg.Data.Driver))
	return source.Load(ctx)
}

// newCache 选择缓存后端：配置了 redis 就用 redis，否则退回内存缓存
func newCache(cfg *conf.Config, logger *zap.Logger) biz.Cache {
	if cfg.Redis.Addr == "" {
		logger.Info("redis not configured, using in-memory cache")
		return data.NewMemoryCache()
	}
	logger.Info("using redis cache", zap.String("addr", cfg.Redis.Addr))
	return data.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
}
