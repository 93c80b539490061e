package state

import (
	"context"
	"testing"
)

func TestMemoryManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryManager()

	if got := m.GetState(ctx, 1); got != StateIdle {
		t.Fatalf("fresh session state = %q, want idle", got)
	}
	if m.InProgress(ctx, 1) {
		t.Fatal("fresh session reported in progress")
	}

	m.SetState(ctx, 1, State("awaiting_link"))
	m.SetTemp(ctx, 1, "target_id", "76561197960287930")

	if !m.InProgress(ctx, 1) {
		t.Fatal("session with non-idle state not in progress")
	}
	if got := m.TempString(ctx, 1, "target_id"); got != "76561197960287930" {
		t.Fatalf("TempString = %q", got)
	}
	if got := m.TempString(ctx, 1, "missing"); got != "" {
		t.Fatalf("TempString for missing key = %q, want empty", got)
	}

	// Sessions are independent per user.
	if m.InProgress(ctx, 2) {
		t.Fatal("other user affected by session")
	}

	m.Clear(ctx, 1)
	if m.InProgress(ctx, 1) {
		t.Fatal("cleared session still in progress")
	}
	if _, ok := m.GetTemp(ctx, 1, "target_id"); ok {
		t.Fatal("temp data survived Clear")
	}
}
