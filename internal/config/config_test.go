package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Addr != ":8090" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.CanvasW != 800 || cfg.CanvasH != 600 {
		t.Errorf("canvas size = %dx%d", cfg.CanvasW, cfg.CanvasH)
	}
	if cfg.HitTolerance != 10 {
		t.Errorf("HitTolerance = %v", cfg.HitTolerance)
	}
	if cfg.GridStep != 50 {
		t.Errorf("GridStep = %v", cfg.GridStep)
	}
	if cfg.CRS != "canvas" {
		t.Errorf("CRS = %q", cfg.CRS)
	}
	if cfg.CellSize != 100 {
		t.Errorf("CellSize = %v", cfg.CellSize)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("RedisAddr = %q, want empty", cfg.RedisAddr)
	}
	if cfg.CacheTTLDefault != time.Minute {
		t.Errorf("CacheTTLDefault = %v", cfg.CacheTTLDefault)
	}
	if cfg.CacheTTLCold != 30*time.Second || cfg.CacheTTLHot != 2*time.Minute {
		t.Errorf("TTL bands = %v/%v", cfg.CacheTTLCold, cfg.CacheTTLHot)
	}
	if cfg.Invalidation.Enabled {
		t.Error("invalidation must default off")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("CANVAS_W", "1024")
	t.Setenv("HIT_TOLERANCE", "15.5")
	t.Setenv("CRS", "EPSG:4326")
	t.Setenv("H3_RES", "9")
	t.Setenv("CACHE_TTL_DEFAULT", "90s")
	t.Setenv("INVALIDATION_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")

	cfg := FromEnv()

	if cfg.Addr != ":9999" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.CanvasW != 1024 {
		t.Errorf("CanvasW = %d", cfg.CanvasW)
	}
	if cfg.HitTolerance != 15.5 {
		t.Errorf("HitTolerance = %v", cfg.HitTolerance)
	}
	if cfg.CRS != "EPSG:4326" || cfg.H3Res != 9 {
		t.Errorf("CRS = %q H3Res = %d", cfg.CRS, cfg.H3Res)
	}
	if cfg.CacheTTLDefault != 90*time.Second {
		t.Errorf("CacheTTLDefault = %v", cfg.CacheTTLDefault)
	}
	// derived bands follow the override
	if cfg.CacheTTLCold != 45*time.Second || cfg.CacheTTLHot != 180*time.Second {
		t.Errorf("TTL bands = %v/%v", cfg.CacheTTLCold, cfg.CacheTTLHot)
	}
	if !cfg.Invalidation.Enabled || cfg.Invalidation.Brokers != "broker1:9092,broker2:9092" {
		t.Errorf("invalidation cfg = %+v", cfg.Invalidation)
	}
}

func TestFromEnv_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CANVAS_W", "huge")
	t.Setenv("HIT_TOLERANCE", "not-a-float")
	t.Setenv("CACHE_TTL_DEFAULT", "soon")
	t.Setenv("INVALIDATION_ENABLED", "maybe")

	cfg := FromEnv()
	if cfg.CanvasW != 800 {
		t.Errorf("CanvasW = %d, want default", cfg.CanvasW)
	}
	if cfg.HitTolerance != 10 {
		t.Errorf("HitTolerance = %v, want default", cfg.HitTolerance)
	}
	if cfg.CacheTTLDefault != time.Minute {
		t.Errorf("CacheTTLDefault = %v, want default", cfg.CacheTTLDefault)
	}
	if cfg.Invalidation.Enabled {
		t.Error("unparseable bool must fall back to default")
	}
}

func TestFromEnv_H3ResClamped(t *testing.T) {
	t.Setenv("H3_RES", "99")
	if got := FromEnv().H3Res; got != 15 {
		t.Errorf("H3Res = %d, want 15", got)
	}
	t.Setenv("H3_RES", "-3")
	if got := FromEnv().H3Res; got != 0 {
		t.Errorf("H3Res = %d, want 0", got)
	}
}
