// internal/game/action_log.go
package game

import (
	"context"
	"time"

	"github.com/jason-s-yu/lotpoker/internal/cache"
)

// ActionPublisher receives the ordered action log of every game.
// *cache.Publisher satisfies it.
type ActionPublisher interface {
	PublishGameAction(ctx context.Context, record cache.GameActionRecord) error
}

// logAction sends the action details to the historian via the publisher.
// Assumes lock is held by caller.
func (g *AuctionGame) logAction(actorID string, actionType string, payload map[string]interface{}) {
	g.actionIndex++
	if g.Actions == nil {
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	record := cache.GameActionRecord{
		GameID:        g.ID,
		ActionIndex:   g.actionIndex,
		ActorID:       actorID,
		ActionType:    actionType,
		ActionPayload: payload,
		Timestamp:     time.Now().UnixMilli(),
	}
	pub := g.Actions
	entry := g.log()
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := pub.PublishGameAction(ctx, rec); err != nil {
			entry.Warnf("publishing action %d (%s): %v", rec.ActionIndex, rec.ActionType, err)
		}
	}(record)
}
