package tracking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/avdave/steamwatch/internal/steam"
)

var (
	// ErrDuplicate signals the (subscriber, target) pair is already persisted.
	ErrDuplicate = errors.New("tracking: subscription already exists")
	// ErrNotTracked signals the pair has no persisted row.
	ErrNotTracked = errors.New("tracking: subscription not found")
	// ErrLimitExceeded signals the subscriber reached the subscription cap.
	ErrLimitExceeded = errors.New("tracking: subscription limit reached")
)

// Subscription is one persisted (subscriber, target) tracking row.
type Subscription struct {
	SubscriberID int64        `db:"subscriber_id"`
	TargetID     string       `db:"target_id"`
	Comment      string       `db:"comment"`
	LastStatus   steam.Status `db:"last_status"`
	CreatedAt    time.Time    `db:"created_at"`
}

// Store is the persistence interface the supervisor operates against.
type Store interface {
	Exists(ctx context.Context, subscriberID int64, targetID string) (bool, error)
	CountFor(ctx context.Context, subscriberID int64) (int, error)
	Insert(ctx context.Context, sub Subscription) error
	Delete(ctx context.Context, subscriberID int64, targetID string) error
	UpdateStatus(ctx context.Context, subscriberID int64, targetID string, status steam.Status) error
	GetStatus(ctx context.Context, subscriberID int64, targetID string) (steam.Status, error)
	ScanAll(ctx context.Context) ([]Subscription, error)
	ListFor(ctx context.Context, subscriberID int64) ([]Subscription, error)
}

// NewStore returns a Postgres-backed Store.
func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

type sqlStore struct {
	db *sqlx.DB
}

func (s *sqlStore) Exists(ctx context.Context, subscriberID int64, targetID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM tracked_profiles WHERE subscriber_id = $1 AND target_id = $2)`,
		subscriberID, targetID)
	if err != nil {
		return false, fmt.Errorf("tracking: exists query: %w", err)
	}
	return exists, nil
}

func (s *sqlStore) CountFor(ctx context.Context, subscriberID int64) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tracked_profiles WHERE subscriber_id = $1`, subscriberID)
	if err != nil {
		return 0, fmt.Errorf("tracking: count query: %w", err)
	}
	return count, nil
}

func (s *sqlStore) Insert(ctx context.Context, sub Subscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracked_profiles (subscriber_id, target_id, comment, last_status)
		 VALUES ($1, $2, $3, $4)`,
		sub.SubscriberID, sub.TargetID, sub.Comment, sub.LastStatus)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("tracking: insert: %w", err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, subscriberID int64, targetID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM tracked_profiles WHERE subscriber_id = $1 AND target_id = $2`,
		subscriberID, targetID)
	if err != nil {
		return fmt.Errorf("tracking: delete: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdateStatus(ctx context.Context, subscriberID int64, targetID string, status steam.Status) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tracked_profiles SET last_status = $3 WHERE subscriber_id = $1 AND target_id = $2`,
		subscriberID, targetID, status)
	if err != nil {
		return fmt.Errorf("tracking: update status: %w", err)
	}
	return nil
}

func (s *sqlStore) GetStatus(ctx context.Context, subscriberID int64, targetID string) (steam.Status, error) {
	var status steam.Status
	err := s.db.GetContext(ctx, &status,
		`SELECT last_status FROM tracked_profiles WHERE subscriber_id = $1 AND target_id = $2`,
		subscriberID, targetID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotTracked
	}
	if err != nil {
		return "", fmt.Errorf("tracking: status query: %w", err)
	}
	return status, nil
}

func (s *sqlStore) ScanAll(ctx context.Context) ([]Subscription, error) {
	var subs []Subscription
	err := s.db.SelectContext(ctx, &subs,
		`SELECT subscriber_id, target_id, comment, last_status, created_at FROM tracked_profiles`)
	if err != nil {
		return nil, fmt.Errorf("tracking: scan all: %w", err)
	}
	return subs, nil
}

func (s *sqlStore) ListFor(ctx context.Context, subscriberID int64) ([]Subscription, error) {
	var subs []Subscription
	err := s.db.SelectContext(ctx, &subs,
		`SELECT subscriber_id, target_id, comment, last_status, created_at
		 FROM tracked_profiles WHERE subscriber_id = $1 ORDER BY created_at`,
		subscriberID)
	if err != nil {
		return nil, fmt.Errorf("tracking: list: %w", err)
	}
	return subs, nil
}
