// Package app wires configuration, the snapshot store, the durable KV and
// every module behind one HTTP router.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fablepress/core/internal/config"
	"github.com/fablepress/core/internal/middleware"
	"github.com/fablepress/core/internal/modules/export"
	"github.com/fablepress/core/internal/modules/snapshot"
	"github.com/fablepress/core/internal/pkg/kv"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	store  *snapshot.Store
	kv     *kv.Store
	logger *zap.Logger
}

// New initializes the application: config → KV → snapshot → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	kvStore, err := kv.Connect(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	store := snapshot.New(snapshot.SourceFor(cfg.SnapshotPath), logger)
	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.Load(loadCtx); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDKey},
		AllowCredentials: true,
	}
	if len(cfg.AllowedOrigins) > 0 && !cfg.IsDev() {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	app := &App{cfg: cfg, router: router, store: store, kv: kvStore, logger: logger}
	app.registerRoutes(buildCommitter(cfg, logger))

	return app, nil
}

func buildCommitter(cfg *config.AppConfig, logger *zap.Logger) export.Committer {
	file := export.NewFileCommitter(cfg.ExportDir, export.ArtifactName(cfg.SnapshotPath), logger)
	if !cfg.S3.Enable {
		return file
	}
	mirror := export.NewS3Committer(export.S3Config{
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		Key:             cfg.S3.Key,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Endpoint:        cfg.S3.Endpoint,
	}, logger)
	return export.Multi(file, mirror)
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown releases held connections.
func (a *App) Shutdown() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("kv close failed", zap.Error(err))
	}
}
