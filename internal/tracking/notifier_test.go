package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avdave/steamwatch/internal/steam"
)

func TestChangeMessage(t *testing.T) {
	sub := Subscription{SubscriberID: 1, TargetID: "76561199999999999", Comment: "test"}
	profile := steam.Profile{Name: "Gaben", Status: steam.StatusOnline}

	online := ChangeMessage(profile, sub, steam.StatusOnline)
	assert.Equal(t, "🟢 Появился в сети\nGaben\n«test»\nhttps://steamcommunity.com/profiles/76561199999999999", online)

	offline := ChangeMessage(profile, sub, steam.StatusOffline)
	assert.Contains(t, offline, "🔴 Вышел из сети")
}
