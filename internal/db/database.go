package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/calvinwijaya/blackjack-web/internal/game"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Database is the round journal. It records registered players and every
// settled round; sessions themselves are never loaded back from it.
type Database struct {
	db     *sql.DB
	driver string
}

type PlayerStats struct {
	PlayerID        string    `json:"playerId"`
	PlayerName      string    `json:"playerName"`
	StartingBalance int       `json:"startingBalance"`
	RoundsPlayed    int       `json:"roundsPlayed"`
	RoundsWon       int       `json:"roundsWon"`
	RoundsLost      int       `json:"roundsLost"`
	RoundsTied      int       `json:"roundsTied"`
	Blackjacks      int       `json:"blackjacks"`
	TotalBets       int       `json:"totalBets"`
	NetWinnings     int       `json:"netWinnings"`
	LastPlayed      time.Time `json:"lastPlayed,omitempty"`
}

// NewDatabase opens a database connection. driver is "sqlite3" or
// "postgres"; dsn is a file path or a connection string respectively.
func NewDatabase(ctx context.Context, driver, dsn string) (*Database, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "error opening database")
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "error connecting to the database")
	}

	// Set connection parameters
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, driver: driver}
	if err := d.initTables(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// initTables creates the necessary tables if they don't exist
func (d *Database) initTables(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS players (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			starting_balance INTEGER NOT NULL,
			created_at BIGINT NOT NULL
		)
	`)
	if err != nil {
		return errors.Wrap(err, "error creating players table")
	}

	serial := "SERIAL PRIMARY KEY"
	if d.driver == "sqlite3" {
		serial = "INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	_, err = d.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS rounds (
			id %s,
			session_id TEXT NOT NULL,
			round INTEGER NOT NULL,
			bet INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			delta INTEGER NOT NULL,
			balance INTEGER NOT NULL,
			player_total INTEGER NOT NULL,
			dealer_total INTEGER NOT NULL,
			created_at BIGINT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES players (id)
		)
	`, serial))
	if err != nil {
		return errors.Wrap(err, "error creating rounds table")
	}

	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// SavePlayer records the player registered on a session
func (d *Database) SavePlayer(ctx context.Context, sessionID, name string, startingBalance int) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO players (id, name, starting_balance, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = excluded.name, starting_balance = excluded.starting_balance
	`, sessionID, name, startingBalance, time.Now().Unix())
	return errors.Wrapf(err, "error saving player %s", sessionID)
}

// SaveRoundResult records a settled round
func (d *Database) SaveRoundResult(ctx context.Context, sessionID string, res *game.Result) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO rounds (session_id, round, bet, outcome, delta, balance, player_total, dealer_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, sessionID, res.Round, res.Bet, string(res.Outcome), res.Delta, res.Balance, res.PlayerTotal, res.DealerTotal, time.Now().Unix())
	return errors.Wrapf(err, "error saving round %d of %s", res.Round, sessionID)
}

// GetPlayerStats retrieves a player's statistics. It returns nil when the
// player was never recorded.
func (d *Database) GetPlayerStats(ctx context.Context, sessionID string) (*PlayerStats, error) {
	stats := PlayerStats{PlayerID: sessionID}

	err := d.db.QueryRowContext(ctx,
		"SELECT name, starting_balance FROM players WHERE id = $1", sessionID,
	).Scan(&stats.PlayerName, &stats.StartingBalance)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error getting player")
	}

	var lastPlayed sql.NullInt64
	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN delta > 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN delta < 0 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = $1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = $2 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(bet), 0),
			COALESCE(SUM(delta), 0),
			MAX(created_at)
		FROM rounds WHERE session_id = $3
	`, string(game.Tie), string(game.PlayerBlackjack), sessionID).Scan(
		&stats.RoundsPlayed,
		&stats.RoundsWon,
		&stats.RoundsLost,
		&stats.RoundsTied,
		&stats.Blackjacks,
		&stats.TotalBets,
		&stats.NetWinnings,
		&lastPlayed,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error getting round totals")
	}

	if lastPlayed.Valid {
		stats.LastPlayed = time.Unix(lastPlayed.Int64, 0)
	}

	return &stats, nil
}
