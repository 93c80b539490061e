package state

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// Router bridges a Manager to the text router, which expects a context-free
// view of session progress.
type Router struct {
	Manager Manager
}

// InProgress reports whether the user has a non-idle session.
func (r Router) InProgress(userID int64) bool {
	if r.Manager == nil {
		return false
	}
	return r.Manager.InProgress(context.Background(), userID)
}

// ManagerHandler dispatches the update to the handler registered for the
// sender's current state. Sessions with no registered handler are cleared so
// the user is never stuck in an unroutable state.
func (r Router) ManagerHandler(c tele.Context) error {
	if r.Manager == nil || c.Sender() == nil {
		return nil
	}
	ctx := context.Background()
	userID := c.Sender().ID
	st := r.Manager.GetState(ctx, userID)
	h := r.Manager.HandlerFor(st)
	if h == nil {
		r.Manager.Clear(ctx, userID)
		return nil
	}
	return h(c)
}
