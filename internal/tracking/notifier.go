package tracking

import (
	"context"
	"fmt"

	"github.com/avdave/steamwatch/internal/steam"
)

// Notifier delivers status-change messages to subscribers.
type Notifier interface {
	Notify(ctx context.Context, subscriberID int64, text string) error
}

// ChangeMessage renders the notification for a status transition: direction
// marker, display name, quoted comment, canonical profile link, one per line.
func ChangeMessage(profile steam.Profile, sub Subscription, newStatus steam.Status) string {
	marker := "🔴 Вышел из сети"
	if newStatus == steam.StatusOnline {
		marker = "🟢 Появился в сети"
	}
	return fmt.Sprintf("%s\n%s\n«%s»\n%s",
		marker, profile.Name, sub.Comment, steam.ProfileURL(sub.TargetID))
}
