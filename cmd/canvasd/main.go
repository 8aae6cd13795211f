package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/geoconsole/spatial-canvas/internal/canvas"
	"github.com/geoconsole/spatial-canvas/internal/cache/querycache"
	"github.com/geoconsole/spatial-canvas/internal/cache/redisstore"
	"github.com/geoconsole/spatial-canvas/internal/cellmap"
	"github.com/geoconsole/spatial-canvas/internal/config"
	"github.com/geoconsole/spatial-canvas/internal/health"
	"github.com/geoconsole/spatial-canvas/internal/hotness/expdecay"
	kafkainv "github.com/geoconsole/spatial-canvas/internal/invalidation/kafka"
	"github.com/geoconsole/spatial-canvas/internal/logger"
	"github.com/geoconsole/spatial-canvas/internal/metrics"
	"github.com/geoconsole/spatial-canvas/internal/observability"
	"github.com/geoconsole/spatial-canvas/internal/render"
	"github.com/geoconsole/spatial-canvas/internal/router"
	"github.com/geoconsole/spatial-canvas/internal/server"
	"github.com/geoconsole/spatial-canvas/internal/source"
	"github.com/geoconsole/spatial-canvas/internal/store"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	seedFlag := flag.String("seed", "", "path to a GeoJSON FeatureCollection seed file")
	flag.Parse()

	cfg := config.FromEnv()
	if *seedFlag != "" {
		cfg.SeedPath = strings.TrimSpace(*seedFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "canvasd",
	}, os.Stdout)

	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting canvasd",
		"addr", cfg.Addr,
		"version", Version,
		"canvas", cfg.CanvasW*cfg.CanvasH,
		"crs", cfg.CRS)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// feature collection: remote source wins over seed file, demo
	// collection is the fallback
	features := store.SeedFeatures()
	layers := store.SeedLayers()
	switch {
	case cfg.SourceURL != "":
		fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		fetched, err := source.Fetch(fetchCtx, source.NewOutbound(), cfg.SourceURL)
		cancel()
		if err != nil {
			appLog.Error("feature source fetch failed", "url", cfg.SourceURL, "err", err)
			return 1
		}
		features = fetched
	case cfg.SeedPath != "":
		loaded, err := store.LoadFile(cfg.SeedPath)
		if err != nil {
			appLog.Error("seed load failed", "path", cfg.SeedPath, "err", err)
			return 1
		}
		features = loaded
	}

	st := store.New(features, layers)
	eng := canvas.New(st, cfg.HitTolerance)

	renderer, err := render.New(cfg.CanvasW, cfg.CanvasH, cfg.GridStep)
	if err != nil {
		appLog.Error("renderer setup failed", "err", err)
		return 1
	}
	frames, err := render.NewFrameCache(cfg.FrameCacheSize)
	if err != nil {
		appLog.Error("frame cache setup failed", "err", err)
		return 1
	}

	var mapper cellmap.Mapper
	if strings.EqualFold(cfg.CRS, "EPSG:4326") {
		m, err := cellmap.NewH3(cfg.H3Res)
		if err != nil {
			appLog.Error("cell mapper setup failed", "err", err)
			return 1
		}
		mapper = m
	} else {
		mapper = cellmap.NewGrid(cfg.CellSize)
	}

	hot := expdecay.New(cfg.HotHalfLife)

	var qc querycache.Cache = querycache.Noop{}
	if cfg.RedisAddr != "" {
		cli, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis setup failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = cli.Close() }()
		qc = querycache.NewRedis(appLog, cli, querycache.TTLs{
			Cold:    cfg.CacheTTLCold,
			Default: cfg.CacheTTLDefault,
			Hot:     cfg.CacheTTLHot,
		}, hot, cfg.HotThreshold, cfg.CacheOpTimeout)
	}

	var ready *kafkainv.Runner
	if cfg.Invalidation.Enabled {
		handler, err := kafkainv.NewHandler(appLog, st, qc, mapper, hot)
		if err != nil {
			appLog.Error("invalidation setup failed", "err", err)
			return 1
		}
		ready = kafkainv.NewRunner(kafkainv.ConfigFrom(cfg.Invalidation), handler, appLog)
		if err := ready.Start(ctx); err != nil {
			appLog.Error("invalidation start failed", "err", err)
			return 1
		}
		defer ready.Stop()
	}

	if os.Getenv("METRICS_ENABLED") == "true" {
		p := metrics.Init(metrics.Config{
			Enabled: true,
			Build: metrics.BuildInfo{
				Version:   os.Getenv("BUILD_VERSION"),
				Revision:  os.Getenv("BUILD_REVISION"),
				Branch:    os.Getenv("BUILD_BRANCH"),
				BuildDate: os.Getenv("BUILD_DATE"),
			},
		})
		p.Serve(ctx, appLog, os.Getenv("METRICS_ADDR"), os.Getenv("METRICS_PATH"))
	}

	api := router.New(appLog, st, eng, renderer, frames, qc, mapper, hot)

	var rr health.ReadinessReporter
	if ready != nil {
		rr = ready
	}
	if err := server.Run(ctx, cfg, appLog, api, rr); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
