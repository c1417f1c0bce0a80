package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// RecorderConfig configures the async audit recorder.
type RecorderConfig struct {
	// Enabled enables audit recording.
	Enabled bool

	// Buffer is the size of the async write channel.
	// Default: 1000.
	Buffer int

	// WriteTimeout bounds each storage write.
	// Default: 5 seconds.
	WriteTimeout time.Duration

	// MaxFieldLength truncates prompt and outcome fields before storage.
	// Default: 4096. Zero keeps the default; negative disables truncation.
	MaxFieldLength int
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Enabled:        true,
		Buffer:         1000,
		WriteTimeout:   5 * time.Second,
		MaxFieldLength: 4096,
	}
}

// Recorder writes audit entries asynchronously. LogAttempt enqueues and
// returns immediately; a background worker drains the channel into
// storage. When the channel is full the entry is dropped with a log line
// rather than stalling the request path.
type Recorder struct {
	storage Storage
	config  RecorderConfig

	entries chan *Entry
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger

	closeOnce sync.Once
}

// NewRecorder creates a recorder over the given storage and starts its
// background worker.
func NewRecorder(storage Storage, config RecorderConfig) *Recorder {
	if config.Buffer <= 0 {
		config.Buffer = 1000
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if config.MaxFieldLength == 0 {
		config.MaxFieldLength = 4096
	}

	r := &Recorder{
		storage: storage,
		config:  config,
		entries: make(chan *Entry, config.Buffer),
		done:    make(chan struct{}),
		logger:  slog.Default().With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("audit recorder started",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// LogAttempt records one completed dispatch attempt. It never blocks; a
// full buffer drops the entry.
func (r *Recorder) LogAttempt(ctx context.Context, credentialID, providerType, systemPrompt, prompt, outcome string) {
	if !r.config.Enabled {
		return
	}

	e := &Entry{
		ID:           uuid.New().String(),
		CredentialID: credentialID,
		ProviderType: providerType,
		SystemPrompt: truncate(systemPrompt, r.config.MaxFieldLength),
		Prompt:       truncate(prompt, r.config.MaxFieldLength),
		Outcome:      truncate(outcome, r.config.MaxFieldLength),
		CreatedAt:    time.Now(),
	}

	select {
	case r.entries <- e:
	case <-r.done:
		r.logger.Warn("recorder shutting down, dropping audit entry",
			"record_id", e.ID,
		)
	default:
		r.logger.Error("audit channel full, dropping entry",
			"record_id", e.ID,
			"capacity", r.config.Buffer,
		)
	}
}

// Close drains the channel and waits for pending writes to complete.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case e := <-r.entries:
			r.write(e)

		case <-r.done:
			r.logger.Debug("draining audit channel before shutdown",
				"pending", len(r.entries),
			)
			for {
				select {
				case e := <-r.entries:
					r.write(e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(e *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, e); err != nil {
		r.logger.Error("failed to store audit entry",
			"record_id", e.ID,
			"credential_id", e.CredentialID,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit entry recorded",
		"record_id", e.ID,
		"credential_id", e.CredentialID,
		"provider", e.ProviderType,
	)
}

// truncate cuts s to at most max bytes without splitting a UTF-8 rune.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
