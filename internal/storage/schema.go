package storage

import "time"

// GameRecord represents a row in the games table
type GameRecord struct {
	GameID       string    `db:"game_id" json:"gameId"`
	InitialFEN   string    `db:"initial_fen" json:"initialFen"`
	Endpoint     string    `db:"endpoint" json:"endpoint"`
	StartTimeUTC time.Time `db:"start_time_utc" json:"startTimeUtc"`
}

// MoveRecord represents a row in the moves table
type MoveRecord struct {
	MoveID       int64     `db:"move_id" json:"moveId"`
	GameID       string    `db:"game_id" json:"gameId"`
	Ply          int       `db:"ply" json:"ply"`
	MoveUCI      string    `db:"move_uci" json:"move"`
	FENAfterMove string    `db:"fen_after_move" json:"fenAfterMove"`
	PlayerColor  string    `db:"player_color" json:"playerColor"` // "w" or "b"
	Source       string    `db:"source" json:"source"`            // "human" or "model"
	MoveTimeUTC  time.Time `db:"move_time_utc" json:"moveTimeUtc"`
}

// Schema defines the SQLite database structure
const Schema = `
CREATE TABLE IF NOT EXISTS games (
	game_id TEXT PRIMARY KEY,
	initial_fen TEXT NOT NULL,
	endpoint TEXT NOT NULL DEFAULT '',
	start_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS moves (
	move_id INTEGER PRIMARY KEY AUTOINCREMENT,
	game_id TEXT NOT NULL,
	ply INTEGER NOT NULL,
	move_uci TEXT NOT NULL,
	fen_after_move TEXT NOT NULL,
	player_color TEXT NOT NULL CHECK(player_color IN ('w', 'b')),
	source TEXT NOT NULL CHECK(source IN ('human', 'model')),
	move_time_utc DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (game_id) REFERENCES games(game_id) ON DELETE CASCADE,
	UNIQUE(game_id, ply)
);

CREATE INDEX IF NOT EXISTS idx_moves_game_id ON moves(game_id);
`
