package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/emryildiz/barberbot/internal/domain"
)

// FailoverMessageGuard serves from the primary guard and switches to the
// fallback when the primary errors. It retries the primary after a minute.
type FailoverMessageGuard struct {
	primary   domain.MessageGuard
	fallback  domain.MessageGuard
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverMessageGuard(primary, fallback domain.MessageGuard, logger *zerolog.Logger) *FailoverMessageGuard {
	return &FailoverMessageGuard{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverMessageGuard) AllowMessage(ctx context.Context, phone string) (bool, error) {
	if r.primaryUsable() {
		allowed, err := r.primary.AllowMessage(ctx, phone)
		if err == nil {
			r.isDown.Store(false)
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.AllowMessage(ctx, phone)
}

func (r *FailoverMessageGuard) SeenMessage(ctx context.Context, messageID string) (bool, error) {
	if r.primaryUsable() {
		seen, err := r.primary.SeenMessage(ctx, messageID)
		if err == nil {
			r.isDown.Store(false)
			return seen, nil
		}
		r.markDown(err)
	}
	return r.fallback.SeenMessage(ctx, messageID)
}

// primaryUsable reports whether the primary should be tried: either it is
// healthy, or it has been down for over a minute and deserves a probe.
func (r *FailoverMessageGuard) primaryUsable() bool {
	if !r.isDown.Load() {
		return true
	}
	last := time.Unix(r.lastCheck.Load(), 0)
	if time.Since(last) > time.Minute {
		r.lastCheck.Store(time.Now().Unix())
		return true
	}
	return false
}

func (r *FailoverMessageGuard) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary message guard failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().Unix())
}
