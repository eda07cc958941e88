package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/batchprocess-backend/internal/platform/logger"
	"github.com/yungbote/batchprocess-backend/internal/realtime/bus"
)

type Clients struct {
	Events bus.Bus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	events := bus.NewNoopBus()
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(log, bus.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		events = b
	}

	return Clients{Events: events}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Events != nil {
		_ = c.Events.Close()
	}
}
