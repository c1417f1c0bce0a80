package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls how long audit entries are kept.
type RetentionConfig struct {
	// MaxAge is the maximum entry age. Zero disables age-based pruning.
	MaxAge time.Duration

	// Schedule is a standard cron expression, e.g. "0 3 * * *" for daily
	// at 3 AM. Empty disables scheduled pruning.
	Schedule string
}

// Pruner deletes audit entries older than the retention window on a cron
// schedule.
type Pruner struct {
	storage Storage
	config  RetentionConfig
	cron    *cron.Cron
	logger  *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewPruner creates a pruner over the given storage.
func NewPruner(storage Storage, config RetentionConfig) *Pruner {
	return &Pruner{
		storage: storage,
		config:  config,
		cron:    cron.New(),
		logger:  slog.Default().With("component", "audit.pruner"),
	}
}

// Start schedules pruning runs. It does nothing when no schedule or no
// retention window is configured.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" || p.config.MaxAge == 0 {
		p.logger.Info("audit retention not configured, pruner disabled")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.Schedule); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.config.Schedule, err)
	}

	if _, err := p.cron.AddFunc(p.config.Schedule, func() {
		p.runOnce(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("audit pruner started",
		"schedule", p.config.Schedule,
		"max_age", p.config.MaxAge,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Prune deletes entries older than the retention window once, returning
// the number deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.MaxAge == 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-p.config.MaxAge)
	return p.storage.PruneBefore(ctx, cutoff)
}

func (p *Pruner) runOnce(ctx context.Context) {
	deleted, err := p.Prune(ctx)
	if err != nil {
		p.logger.Error("scheduled audit pruning failed", "error", err)
		return
	}
	if deleted > 0 {
		p.logger.Info("audit entries pruned", "deleted", deleted)
	} else {
		p.logger.Debug("audit pruning completed, nothing to delete")
	}
}

// Stop stops the scheduler and waits for any running job to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		<-p.cron.Stop().Done()
		p.running = false
		p.logger.Info("audit pruner stopped")
	}
}
