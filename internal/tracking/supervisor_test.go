package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdave/steamwatch/internal/steam"
)

type memStore struct {
	mu   sync.Mutex
	rows map[Key]*Subscription
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[Key]*Subscription)}
}

func (m *memStore) Exists(_ context.Context, subscriberID int64, targetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[Key{subscriberID, targetID}]
	return ok, nil
}

func (m *memStore) CountFor(_ context.Context, subscriberID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.rows {
		if k.SubscriberID == subscriberID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Insert(_ context.Context, sub Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := Key{sub.SubscriberID, sub.TargetID}
	if _, ok := m.rows[k]; ok {
		return ErrDuplicate
	}
	cp := sub
	m.rows[k] = &cp
	return nil
}

func (m *memStore) Delete(_ context.Context, subscriberID int64, targetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, Key{subscriberID, targetID})
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, subscriberID int64, targetID string, status steam.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if row, ok := m.rows[Key{subscriberID, targetID}]; ok {
		row.LastStatus = status
	}
	return nil
}

func (m *memStore) GetStatus(_ context.Context, subscriberID int64, targetID string) (steam.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[Key{subscriberID, targetID}]
	if !ok {
		return "", ErrNotTracked
	}
	return row.LastStatus, nil
}

func (m *memStore) ScanAll(_ context.Context) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Subscription, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (m *memStore) ListFor(_ context.Context, subscriberID int64) ([]Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Subscription
	for k, row := range m.rows {
		if k.SubscriberID == subscriberID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type fakeFetcher struct {
	mu     sync.Mutex
	status steam.Status
	name   string
}

func (f *fakeFetcher) setStatus(s steam.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (steam.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := f.name
	if name == "" {
		name = "player"
	}
	return steam.Profile{Name: name, Status: f.status}, nil
}

type recordNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordNotifier) Notify(_ context.Context, _ int64, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordNotifier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func testSupervisor(t *testing.T, fetch Fetcher) (*Supervisor, *memStore, *recordNotifier) {
	t.Helper()
	store := newMemStore()
	notify := &recordNotifier{}
	sup := NewSupervisor(store, fetch, notify, Config{
		PollInterval:  5 * time.Millisecond,
		RetryInterval: 5 * time.Millisecond,
	})
	t.Cleanup(sup.StopAll)
	return sup, store, notify
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestTrackSpawnsSingleTaskPerKey(t *testing.T) {
	sup, _, _ := testSupervisor(t, &fakeFetcher{status: steam.StatusOffline})
	ctx := context.Background()

	require.NoError(t, sup.Track(ctx, 1, "76561197960287930", "a"))
	require.NoError(t, sup.Track(ctx, 1, "76561197960287930", "a"))
	assert.Equal(t, 1, sup.TaskCount())

	require.NoError(t, sup.Track(ctx, 2, "76561197960287930", "b"))
	assert.Equal(t, 2, sup.TaskCount())
}

func TestToggleLimit(t *testing.T) {
	sup, store, _ := testSupervisor(t, &fakeFetcher{status: steam.StatusOffline})
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		id := "7656119796028793" + string(rune('0'+i))
		require.NoError(t, store.Insert(ctx, Subscription{SubscriberID: 1, TargetID: id}))
	}

	_, err := sup.Toggle(ctx, 1, "76561198000000000")
	assert.ErrorIs(t, err, ErrLimitExceeded)

	// A different subscriber is unaffected.
	res, err := sup.Toggle(ctx, 2, "76561198000000000")
	require.NoError(t, err)
	assert.Equal(t, ToggleNeedComment, res)
}

func TestToggleStopsAndRestarts(t *testing.T) {
	sup, store, _ := testSupervisor(t, &fakeFetcher{status: steam.StatusOffline})
	ctx := context.Background()
	const target = "76561197960287930"

	res, err := sup.Toggle(ctx, 1, target)
	require.NoError(t, err)
	assert.Equal(t, ToggleNeedComment, res)
	require.NoError(t, sup.Track(ctx, 1, target, "mate"))
	assert.Equal(t, 1, sup.TaskCount())

	// Second submission stops the running subscription.
	res, err = sup.Toggle(ctx, 1, target)
	require.NoError(t, err)
	assert.Equal(t, ToggleStopped, res)
	assert.Equal(t, 0, sup.TaskCount())
	exists, _ := store.Exists(ctx, 1, target)
	assert.False(t, exists)

	// Immediate third submission is accepted as a fresh start.
	res, err = sup.Toggle(ctx, 1, target)
	require.NoError(t, err)
	assert.Equal(t, ToggleNeedComment, res)
	require.NoError(t, sup.Track(ctx, 1, target, "mate"))
	assert.Equal(t, 1, sup.TaskCount())
}

func TestNotifyOnChangeOnly(t *testing.T) {
	fetch := &fakeFetcher{status: steam.StatusOnline, name: "Gaben"}
	sup, store, notify := testSupervisor(t, fetch)
	ctx := context.Background()
	const target = "76561199999999999"

	require.NoError(t, sup.Track(ctx, 7, target, "test"))

	waitFor(t, func() bool { return len(notify.all()) >= 1 })

	// The persisted status flips before the notification is observable.
	st, err := store.GetStatus(ctx, 7, target)
	require.NoError(t, err)
	assert.Equal(t, steam.StatusOnline, st)

	msg := notify.all()[0]
	assert.Contains(t, msg, "Gaben")
	assert.Contains(t, msg, "«test»")
	assert.Contains(t, msg, "https://steamcommunity.com/profiles/"+target)

	// Consecutive identical fetches produce no further notifications.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, notify.all(), 1)

	fetch.setStatus(steam.StatusOffline)
	waitFor(t, func() bool { return len(notify.all()) >= 2 })
	assert.Contains(t, notify.all()[1], "Вышел")
}

func TestRestoreIdempotent(t *testing.T) {
	sup, store, _ := testSupervisor(t, &fakeFetcher{status: steam.StatusOffline})
	ctx := context.Background()

	targets := []string{"76561197960287930", "76561197960287931", "76561197960287932"}
	for _, id := range targets {
		require.NoError(t, store.Insert(ctx, Subscription{SubscriberID: 1, TargetID: id}))
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = sup.Restore(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, sup.TaskCount())
}

func TestTaskStopsWhenRowVanishes(t *testing.T) {
	sup, store, _ := testSupervisor(t, &fakeFetcher{status: steam.StatusOffline})
	ctx := context.Background()
	const target = "76561197960287930"

	require.NoError(t, sup.Track(ctx, 1, target, "x"))
	require.NoError(t, store.Delete(ctx, 1, target))

	waitFor(t, func() bool { return sup.TaskCount() == 0 })
}

func TestStopAllCancelsTasks(t *testing.T) {
	store := newMemStore()
	sup := NewSupervisor(store, &fakeFetcher{status: steam.StatusOffline}, &recordNotifier{}, Config{
		PollInterval: 5 * time.Millisecond,
	})
	ctx := context.Background()

	require.NoError(t, sup.Track(ctx, 1, "76561197960287930", "x"))
	require.NoError(t, sup.Track(ctx, 1, "76561197960287931", "y"))

	sup.StopAll()
	assert.Equal(t, 0, sup.TaskCount())

	// Spawning after shutdown is suppressed.
	require.NoError(t, sup.Track(ctx, 1, "76561197960287932", "z"))
	assert.Equal(t, 0, sup.TaskCount())
}
