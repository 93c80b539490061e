package tracking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/avdave/steamwatch/core/logger"
	"github.com/avdave/steamwatch/internal/steam"
)

// Key identifies one polling task.
type Key struct {
	SubscriberID int64
	TargetID     string
}

// Fetcher is the profile snapshot source the poll loop uses.
type Fetcher interface {
	Fetch(ctx context.Context, targetID string) (steam.Profile, error)
}

// Config holds supervisor settings.
type Config struct {
	PollInterval  time.Duration
	RetryInterval time.Duration
	Limit         int
}

// ToggleResult describes what Toggle decided for a submitted target.
type ToggleResult int

const (
	// ToggleStopped means an existing subscription was removed and its task cancelled.
	ToggleStopped ToggleResult = iota
	// ToggleNeedComment means the target is new and a comment must be collected
	// before Track is called.
	ToggleNeedComment
)

// Supervisor owns the full set of polling tasks. The registry map is the sole
// arbiter of one-task-per-key; every spawn goes through it.
type Supervisor struct {
	store  Store
	fetch  Fetcher
	notify Notifier

	pollInterval  time.Duration
	retryInterval time.Duration
	limit         int

	mu    sync.Mutex
	tasks map[Key]context.CancelFunc

	base     context.Context
	baseStop context.CancelFunc
	wg       sync.WaitGroup
}

// NewSupervisor builds a supervisor. Zero-valued config fields fall back to
// 30s polling, 60s error retry and a limit of 10 subscriptions per subscriber.
func NewSupervisor(store Store, fetch Fetcher, notify Notifier, cfg Config) *Supervisor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 60 * time.Second
	}
	if cfg.Limit <= 0 {
		cfg.Limit = 10
	}
	base, stop := context.WithCancel(context.Background())
	return &Supervisor{
		store:         store,
		fetch:         fetch,
		notify:        notify,
		pollInterval:  cfg.PollInterval,
		retryInterval: cfg.RetryInterval,
		limit:         cfg.Limit,
		tasks:         make(map[Key]context.CancelFunc),
		base:          base,
		baseStop:      stop,
	}
}

// Toggle processes a submitted target for a subscriber. An existing
// subscription is stopped: the task is cancelled, its registry entry removed
// and the row deleted before Toggle returns, so an immediate re-submission of
// the same target starts fresh. A new target passes the cardinality check and
// waits for a comment.
func (s *Supervisor) Toggle(ctx context.Context, subscriberID int64, targetID string) (ToggleResult, error) {
	key := Key{SubscriberID: subscriberID, TargetID: targetID}

	exists, err := s.store.Exists(ctx, subscriberID, targetID)
	if err != nil {
		return 0, err
	}
	if exists {
		s.stopTask(key)
		if err := s.store.Delete(ctx, subscriberID, targetID); err != nil {
			return 0, err
		}
		logger.Info(ctx, "tracker", "subscription.stopped",
			slog.Int64("subscriber_id", subscriberID),
			slog.String("target_id", targetID),
		)
		return ToggleStopped, nil
	}

	count, err := s.store.CountFor(ctx, subscriberID)
	if err != nil {
		return 0, err
	}
	if count >= s.limit {
		return 0, ErrLimitExceeded
	}
	return ToggleNeedComment, nil
}

// Track persists a new subscription with an initial offline status and spawns
// its polling task. A duplicate row (racing submissions) is treated as already
// tracking and is not an error.
func (s *Supervisor) Track(ctx context.Context, subscriberID int64, targetID, comment string) error {
	sub := Subscription{
		SubscriberID: subscriberID,
		TargetID:     targetID,
		Comment:      comment,
		LastStatus:   steam.StatusOffline,
	}
	if err := s.store.Insert(ctx, sub); err != nil && !errors.Is(err, ErrDuplicate) {
		return err
	}
	s.spawn(Key{SubscriberID: subscriberID, TargetID: targetID}, sub)
	logger.Info(ctx, "tracker", "subscription.started",
		slog.Int64("subscriber_id", subscriberID),
		slog.String("target_id", targetID),
	)
	return nil
}

// Restore scans persisted subscriptions and spawns a task for each. Safe to
// call concurrently with itself or with fresh commands: the registry suppresses
// duplicate spawns per key.
func (s *Supervisor) Restore(ctx context.Context) error {
	subs, err := s.store.ScanAll(ctx)
	if err != nil {
		return err
	}
	spawned := 0
	for _, sub := range subs {
		if s.spawn(Key{SubscriberID: sub.SubscriberID, TargetID: sub.TargetID}, sub) {
			spawned++
		}
	}
	logger.Info(ctx, "tracker", "restore.done",
		slog.Int("rows", len(subs)),
		slog.Int("tasks", spawned),
	)
	return nil
}

// TaskCount reports the number of live polling tasks.
func (s *Supervisor) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// StopAll cancels every task and waits for the loops to exit.
func (s *Supervisor) StopAll() {
	s.baseStop()
	s.mu.Lock()
	for key, cancel := range s.tasks {
		cancel()
		delete(s.tasks, key)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// spawn registers the key and starts its poll loop. Returns false when a task
// for the key already exists.
func (s *Supervisor) spawn(key Key, sub Subscription) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[key]; ok {
		return false
	}
	if s.base.Err() != nil {
		return false
	}
	ctx, cancel := context.WithCancel(s.base)
	s.tasks[key] = cancel
	s.wg.Add(1)
	go s.pollLoop(ctx, key, sub)
	return true
}

// stopTask cancels the key's task and removes its registry entry. The entry is
// gone before this returns.
func (s *Supervisor) stopTask(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.tasks[key]; ok {
		cancel()
		delete(s.tasks, key)
	}
}

func (s *Supervisor) pollLoop(ctx context.Context, key Key, sub Subscription) {
	defer s.wg.Done()

	lctx := logger.WithLogger(ctx, logger.Component("tracker"))

	for {
		interval, stop := s.pollOnce(lctx, key, sub)
		if stop {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

// pollOnce runs one iteration and reports how long to sleep before the next,
// or that the loop must exit.
func (s *Supervisor) pollOnce(ctx context.Context, key Key, sub Subscription) (time.Duration, bool) {
	if ctx.Err() != nil {
		return 0, true
	}

	// Reconciliation backstop: the row is normally deleted via Toggle together
	// with the task, but a vanished row must still stop an orphaned loop.
	exists, err := s.store.Exists(ctx, key.SubscriberID, key.TargetID)
	if err != nil {
		logger.Warn(ctx, "tracker", "poll.store_error",
			slog.Int64("subscriber_id", key.SubscriberID),
			slog.String("target_id", key.TargetID),
			slog.String("err", err.Error()),
		)
		return s.retryInterval, false
	}
	if !exists {
		s.stopTask(key)
		logger.Info(ctx, "tracker", "poll.row_gone",
			slog.Int64("subscriber_id", key.SubscriberID),
			slog.String("target_id", key.TargetID),
		)
		return 0, true
	}

	profile, err := s.fetch.Fetch(ctx, key.TargetID)
	if err != nil {
		if ctx.Err() != nil {
			return 0, true
		}
		logger.Warn(ctx, "tracker", "poll.fetch_error",
			slog.Int64("subscriber_id", key.SubscriberID),
			slog.String("target_id", key.TargetID),
			slog.String("err", err.Error()),
		)
		return s.retryInterval, false
	}

	last, err := s.store.GetStatus(ctx, key.SubscriberID, key.TargetID)
	if errors.Is(err, ErrNotTracked) {
		s.stopTask(key)
		return 0, true
	}
	if err != nil {
		logger.Warn(ctx, "tracker", "poll.store_error",
			slog.Int64("subscriber_id", key.SubscriberID),
			slog.String("target_id", key.TargetID),
			slog.String("err", err.Error()),
		)
		return s.retryInterval, false
	}

	if profile.Status != last {
		// Persist before notifying: a crash between the two loses at most a
		// notification, never produces duplicate ones.
		if err := s.store.UpdateStatus(ctx, key.SubscriberID, key.TargetID, profile.Status); err != nil {
			logger.Warn(ctx, "tracker", "poll.store_error",
				slog.Int64("subscriber_id", key.SubscriberID),
				slog.String("target_id", key.TargetID),
				slog.String("err", err.Error()),
			)
			return s.retryInterval, false
		}
		text := ChangeMessage(profile, sub, profile.Status)
		if err := s.notify.Notify(ctx, key.SubscriberID, text); err != nil {
			logger.Warn(ctx, "tracker", "poll.notify_error",
				slog.Int64("subscriber_id", key.SubscriberID),
				slog.String("target_id", key.TargetID),
				slog.String("err", err.Error()),
			)
		}
		logger.Info(ctx, "tracker", "status.changed",
			slog.Int64("subscriber_id", key.SubscriberID),
			slog.String("target_id", key.TargetID),
			slog.String("profile_status", string(profile.Status)),
		)
	}

	return s.pollInterval, false
}
