package kafka

import (
	"strings"
	"time"

	"github.com/geoconsole/spatial-canvas/internal/config"
)

const DriverKafka = "kafka"

type InvalidationConfig struct {
	Enabled          bool
	Driver           string
	Brokers          []string
	Topic            string
	GroupID          string
	SessionTimeout   time.Duration
	Heartbeat        time.Duration
	RebalanceTimeout time.Duration
	InitialOldest    bool
}

func ConfigFrom(cfg config.InvalidationCfg) InvalidationConfig {
	return InvalidationConfig{
		Enabled:          cfg.Enabled,
		Driver:           cfg.Driver,
		Brokers:          splitBrokers(cfg.Brokers),
		Topic:            cfg.Topic,
		GroupID:          cfg.GroupID,
		SessionTimeout:   10 * time.Second,
		Heartbeat:        3 * time.Second,
		RebalanceTimeout: 60 * time.Second,
	}
}

func splitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
