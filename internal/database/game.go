// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jason-s-yu/lotpoker/internal/models"
)

// RecordGameResults persists the final score lines of a game and marks it completed.
// scores is in final order; a line's position is its index plus one.
func (s *Store) RecordGameResults(ctx context.Context, gameID uuid.UUID, scores []models.ScoreDetail) error {
	err := pgx.BeginTxFunc(ctx, s.Pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, end_time)
			VALUES ($1, 'completed', NOW())
			ON CONFLICT (id) DO UPDATE SET status = 'completed', end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, gameID); e != nil {
			return e
		}

		for i, sc := range scores {
			bestHand, e := json.Marshal(sc.BestHand)
			if e != nil {
				return e
			}
			hidden, e := json.Marshal(sc.HiddenCard)
			if e != nil {
				return e
			}
			q := `
				INSERT INTO game_results (
					game_id, player_id, position, hand_rank, hand_name, best_hand, hidden_card,
					prize_score, guess_score, money_score, total_score
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET position=$3, hand_rank=$4, hand_name=$5, best_hand=$6, hidden_card=$7,
					prize_score=$8, guess_score=$9, money_score=$10, total_score=$11
			`
			if _, e := tx.Exec(ctx, q, gameID, sc.PlayerID, i+1, sc.Rank, sc.HandName, bestHand, hidden,
				sc.PrizeScore, sc.GuessScore, sc.MoneyScore, sc.TotalScore); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}
