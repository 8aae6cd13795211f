package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type InvalidationCfg struct {
	Enabled bool
	Driver  string
	Topic   string
	Brokers string
	GroupID string
}

type Config struct {
	Addr     string
	LogLevel string

	// Canvas surface and interaction tuning.
	CanvasW      int
	CanvasH      int
	GridStep     float64
	HitTolerance float64

	// Feature collection origin. SeedPath points at a GeoJSON
	// FeatureCollection on disk; SourceURL, when set, wins and is
	// fetched once at startup.
	SeedPath  string
	SourceURL string
	CRS       string

	// Cell mapping for cache keys and hotness.
	CellSize float64
	H3Res    int

	RedisAddr       string
	CacheOpTimeout  time.Duration
	CacheTTLDefault time.Duration
	CacheTTLCold    time.Duration
	CacheTTLHot     time.Duration

	HotThreshold float64
	HotHalfLife  time.Duration

	FrameCacheSize int

	Invalidation InvalidationCfg
}

func FromEnv() Config {
	ttlDefault := getduration("CACHE_TTL_DEFAULT", 60*time.Second)

	return Config{
		Addr:     getenv("ADDR", ":8090"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		CanvasW:      getint("CANVAS_W", 800),
		CanvasH:      getint("CANVAS_H", 600),
		GridStep:     getfloat("GRID_STEP", 50),
		HitTolerance: getfloat("HIT_TOLERANCE", 10),

		SeedPath:  getenv("SEED_PATH", ""),
		SourceURL: getenv("SOURCE_URL", ""),
		CRS:       getenv("CRS", "canvas"),

		CellSize: getfloat("CELL_SIZE", 100),
		H3Res:    clampres(getint("H3_RES", 8)),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		CacheOpTimeout:  getduration("CACHE_OP_TIMEOUT", 250*time.Millisecond),
		CacheTTLDefault: ttlDefault,
		CacheTTLCold:    getduration("CACHE_TTL_COLD", ttlDefault/2),
		CacheTTLHot:     getduration("CACHE_TTL_HOT", 2*ttlDefault),

		HotThreshold: getfloat("HOT_THRESHOLD", 10.0),
		HotHalfLife:  getduration("HOT_HALF_LIFE", time.Minute),

		FrameCacheSize: getint("FRAME_CACHE_SIZE", 64),

		Invalidation: InvalidationCfg{
			Enabled: getbool("INVALIDATION_ENABLED", false),
			Driver:  getenv("INVALIDATION_DRIVER", "none"),
			Topic:   getenv("KAFKA_TOPIC", "feature-updates"),
			Brokers: getenv("KAFKA_BROKERS", "localhost:9092"),
			GroupID: getenv("KAFKA_GROUP_ID", "canvas-invalidator"),
		},
	}
}

func clampres(res int) int {
	if res < 0 {
		return 0
	}
	if res > 15 {
		return 15
	}
	return res
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
