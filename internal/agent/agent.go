package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// Complete returns the model's answer for call. A cache hit skips the model
// and the cooldown entirely. Waiting for the cooldown is aborted when ctx is
// cancelled.
func (a *implAgent) Complete(ctx context.Context, call Call) (string, error) {
	if call.CacheKey != "" {
		raw, ok, err := a.cache.Get(ctx, call.CacheKey)
		if err != nil {
			a.logger.Warn(ctx, "Cache read %s failed: %v", call.CacheKey, err)
		} else if ok {
			a.logger.Debug(ctx, "Cache hit: %s", call.CacheKey)
			return string(raw), nil
		}
	}

	waitStart := time.Now()
	if err := a.gate.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("cooldown: %w", ctx.Err())
		}
		return "", domain.AgentError("cooldown", err)
	}
	if waited := time.Since(waitStart); waited > time.Second {
		a.logger.Debug(ctx, "Cooldown waited %s", waited.Round(time.Second))
	}

	callCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	text, err := a.model.Generate(callCtx, Request{
		System:      call.System,
		User:        call.User,
		MaxTokens:   call.MaxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", domain.AgentError("generate", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.AgentError("generate", domain.ErrEmptyResponse)
	}

	if call.CacheKey != "" {
		if err := a.cache.Put(ctx, call.CacheKey, []byte(text)); err != nil {
			a.logger.Warn(ctx, "Cache write %s failed: %v", call.CacheKey, err)
		}
	}
	return text, nil
}
