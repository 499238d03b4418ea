package database

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id         UUID PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'in_progress',
	start_time TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	end_time   TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game_actions (
	game_id        UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	action_index   INT NOT NULL,
	actor_id       TEXT NOT NULL DEFAULT '',
	action_type    TEXT NOT NULL,
	action_payload JSONB NOT NULL DEFAULT '{}',
	recorded_at    TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (game_id, action_index)
);

CREATE TABLE IF NOT EXISTS game_results (
	game_id     UUID NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	player_id   TEXT NOT NULL,
	position    INT NOT NULL,
	hand_rank   INT NOT NULL,
	hand_name   TEXT NOT NULL,
	best_hand   JSONB NOT NULL DEFAULT '[]',
	hidden_card JSONB NOT NULL,
	prize_score INT NOT NULL,
	guess_score INT NOT NULL,
	money_score INT NOT NULL,
	total_score INT NOT NULL,
	PRIMARY KEY (game_id, player_id)
);
`

// EnsureSchema creates the archive tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
