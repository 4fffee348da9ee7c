// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/logging"
	"github.com/tomtom215/warden/internal/metrics"
)

// ErrClosed is returned by queries after Close.
var ErrClosed = errors.New("reload history closed")

// Config holds configuration for the Recorder.
type Config struct {
	// RetentionDays is how long entries are kept. Zero keeps them forever.
	RetentionDays int

	// CleanupInterval is how often Serve enforces retention.
	CleanupInterval time.Duration

	// BufferSize is the capacity of the async write buffer.
	BufferSize int
}

// DefaultConfig returns the default history configuration.
func DefaultConfig() Config {
	return Config{
		RetentionDays:   30,
		CleanupInterval: 24 * time.Hour,
		BufferSize:      100,
	}
}

// Recorder writes history entries asynchronously. It implements
// authz.ReloadObserver; ObserveReload never blocks the enforcer, and when
// the buffer is full the entry is dropped and counted.
type Recorder struct {
	config    Config
	store     Store
	entryChan chan *Entry

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

var _ authz.ReloadObserver = (*Recorder)(nil)

// NewRecorder creates a Recorder writing to store and starts its writer.
func NewRecorder(store Store, config Config) *Recorder {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	r := &Recorder{
		config:    config,
		store:     store,
		entryChan: make(chan *Entry, config.BufferSize),
		stopChan:  make(chan struct{}),
	}

	r.wg.Add(1)
	go r.asyncWriter()

	return r
}

func (r *Recorder) asyncWriter() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stopChan:
			for {
				select {
				case entry := <-r.entryChan:
					r.writeEntry(entry)
				default:
					return
				}
			}
		case entry := <-r.entryChan:
			r.writeEntry(entry)
		}
	}
}

func (r *Recorder) writeEntry(entry *Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.store.Save(ctx, entry); err != nil {
		metrics.RecordHistoryEntry("failed")
		logging.Error().Err(err).
			Str("entry_id", entry.ID).
			Uint64("version", entry.Version).
			Msg("Failed to save reload history entry")
		return
	}
	metrics.RecordHistoryEntry("stored")
}

// ObserveReload queues an entry for one policy load.
func (r *Recorder) ObserveReload(status authz.SnapshotStatus, duration time.Duration, err error) {
	entry := &Entry{
		Outcome:      OutcomeSuccess,
		Version:      status.Version,
		Roles:        status.Roles,
		Users:        status.Users,
		Rules:        status.Rules,
		SkippedRules: status.SkippedRules,
		Duration:     duration,
	}
	if err != nil {
		entry.Outcome = OutcomeFailure
		entry.Error = logging.SanitizeError(err.Error())
	}
	r.Record(entry)
}

// Record queues an entry. Missing ID and Timestamp are filled in.
func (r *Recorder) Record(entry *Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		metrics.RecordHistoryEntry("dropped")
		return
	}

	select {
	case r.entryChan <- entry:
	default:
		metrics.RecordHistoryEntry("dropped")
		logging.Warn().Uint64("version", entry.Version).Msg("Reload history buffer full, entry dropped")
	}
}

// Query returns stored entries matching filter, newest first, together
// with the total number of matches ignoring Limit and Offset.
func (r *Recorder) Query(ctx context.Context, filter QueryFilter) ([]Entry, int64, error) {
	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return nil, 0, ErrClosed
	}

	entries, err := r.store.Query(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.store.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Cleanup deletes entries older than the retention period.
func (r *Recorder) Cleanup(ctx context.Context) (int64, error) {
	if r.config.RetentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -r.config.RetentionDays)
	return r.store.Delete(ctx, cutoff)
}

// Serve enforces retention every CleanupInterval until ctx is done. It
// implements suture.Service.
func (r *Recorder) Serve(ctx context.Context) error {
	interval := r.config.CleanupInterval
	if interval <= 0 || r.config.RetentionDays <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Cleanup(ctx); err != nil {
				logging.Error().Err(err).Msg("Reload history cleanup failed")
			}
		}
	}
}

func (r *Recorder) String() string {
	return "reload-history"
}

// Close stops the writer after flushing queued entries.
func (r *Recorder) Close() error {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		r.mu.Unlock()

		close(r.stopChan)
		r.wg.Wait()
	})
	return nil
}
