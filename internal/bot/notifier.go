package bot

import (
	"context"
	"errors"

	"github.com/avdave/steamwatch/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Notifier delivers tracking notifications through the bot, asynchronously
// when a dispatcher is attached.
type Notifier struct {
	bot  *tele.Bot
	disp *sender.Dispatcher
}

// NewNotifier builds a notifier. disp may be nil; sends are then synchronous.
func NewNotifier(b *tele.Bot, disp *sender.Dispatcher) *Notifier {
	return &Notifier{bot: b, disp: disp}
}

// Notify sends text to the subscriber's private chat.
func (n *Notifier) Notify(ctx context.Context, subscriberID int64, text string) error {
	run := func() error {
		_, err := n.bot.Send(&tele.User{ID: subscriberID}, text)
		return err
	}
	if n.disp == nil {
		return run()
	}
	err := n.disp.Enqueue(ctx, "notify.status", "sendMessage", run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		return run()
	}
	return err
}
