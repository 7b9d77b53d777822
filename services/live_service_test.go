package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephancmorris/league-fan-hub/models"
)

func TestLiveHub_BroadcastFiltering(t *testing.T) {
	hub := NewLiveHub()

	all := hub.subscribe("")
	matchA := hub.subscribe("match-a")
	matchB := hub.subscribe("match-b")
	defer hub.unsubscribe(all)
	defer hub.unsubscribe(matchA)
	defer hub.unsubscribe(matchB)

	hub.Broadcast(models.MatchUpdate{MatchID: "match-a", Type: models.MatchUpdateScore})

	require.Len(t, all.ch, 1)
	require.Len(t, matchA.ch, 1)
	assert.Empty(t, matchB.ch)

	got := <-matchA.ch
	assert.Equal(t, "match-a", got.MatchID)
	assert.Equal(t, models.MatchUpdateScore, got.Type)
}

func TestLiveHub_SlowSubscriberDropsUpdates(t *testing.T) {
	hub := NewLiveHub()
	sub := hub.subscribe("")
	defer hub.unsubscribe(sub)

	// Overfill the buffer; Broadcast must not block.
	for i := 0; i < 100; i++ {
		hub.Broadcast(models.MatchUpdate{MatchID: "m", Type: models.MatchUpdateStatus})
	}
	assert.Equal(t, cap(sub.ch), len(sub.ch))
}

func TestLiveHub_SubscriberCount(t *testing.T) {
	hub := NewLiveHub()
	assert.Equal(t, 0, hub.SubscriberCount())

	a := hub.subscribe("")
	b := hub.subscribe("match-x")
	assert.Equal(t, 2, hub.SubscriberCount())

	hub.unsubscribe(a)
	hub.unsubscribe(b)
	assert.Equal(t, 0, hub.SubscriberCount())
}
