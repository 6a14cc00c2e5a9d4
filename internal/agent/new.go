package agent

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/nguyentantai21042004/protocol-flow/internal/cache"
	"github.com/nguyentantai21042004/protocol-flow/internal/config"
	"github.com/nguyentantai21042004/protocol-flow/internal/logger"
)

type implAgent struct {
	model       Model
	gate        *rate.Limiter
	cache       cache.Store
	temperature float32
	timeout     time.Duration
	logger      logger.Logger
}

// New creates an Agent. Consecutive model calls are spaced by at least
// cfg.Cooldown; the first call is not delayed.
func New(cfg config.LLMConfig, model Model, store cache.Store, log logger.Logger) Agent {
	if store == nil {
		store = cache.Nop()
	}
	return &implAgent{
		model:       model,
		gate:        newCooldownGate(cfg.Cooldown),
		cache:       store,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      log.With(map[string]interface{}{logger.FieldComponent: "agent"}),
	}
}

func newCooldownGate(cooldown time.Duration) *rate.Limiter {
	if cooldown <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(cooldown), 1)
}
