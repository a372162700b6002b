package repository

import (
	"context"
	"ctchen222/Battleship/internal/api/models"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("api.repository.match")

// timeLayout has a fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// MatchRepository defines the interface for the finished-match ledger.
type MatchRepository interface {
	Create(ctx context.Context, m *models.Match) error
	ListRecent(ctx context.Context, limit int) ([]models.Match, error)
}

type sqliteMatchRepository struct {
	db *sqlx.DB
}

// NewMatchRepository creates a new SQLite-based MatchRepository.
func NewMatchRepository(db *sqlx.DB) MatchRepository {
	return &sqliteMatchRepository{db: db}
}

// matchRow mirrors the matches table; timestamps are stored as text.
type matchRow struct {
	ID            string `db:"id"`
	RoomID        string `db:"room_id"`
	WinnerID      int    `db:"winner_id"`
	WinnerSession string `db:"winner_session"`
	LoserSession  string `db:"loser_session"`
	Shots         int    `db:"shots"`
	StartedAt     string `db:"started_at"`
	FinishedAt    string `db:"finished_at"`
}

// Create inserts a finished match.
func (r *sqliteMatchRepository) Create(ctx context.Context, m *models.Match) error {
	ctx, span := tracer.Start(ctx, "MatchRepository.Create")
	defer span.End()

	row := matchRow{
		ID:            m.ID,
		RoomID:        m.RoomID,
		WinnerID:      m.WinnerID,
		WinnerSession: m.WinnerSession,
		LoserSession:  m.LoserSession,
		Shots:         m.Shots,
		StartedAt:     m.StartedAt.UTC().Format(timeLayout),
		FinishedAt:    m.FinishedAt.UTC().Format(timeLayout),
	}
	query := `INSERT INTO matches (id, room_id, winner_id, winner_session, loser_session, shots, started_at, finished_at)
		VALUES (:id, :room_id, :winner_id, :winner_session, :loser_session, :shots, :started_at, :finished_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}
	return nil
}

// ListRecent returns up to limit matches, most recently finished first.
func (r *sqliteMatchRepository) ListRecent(ctx context.Context, limit int) ([]models.Match, error) {
	ctx, span := tracer.Start(ctx, "MatchRepository.ListRecent")
	defer span.End()

	var rows []matchRow
	query := `SELECT id, room_id, winner_id, winner_session, loser_session, shots, started_at, finished_at
		FROM matches ORDER BY finished_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	out := make([]models.Match, 0, len(rows))
	for _, row := range rows {
		started, err := time.Parse(timeLayout, row.StartedAt)
		if err != nil {
			return nil, fmt.Errorf("bad started_at for match %s: %w", row.ID, err)
		}
		finished, err := time.Parse(timeLayout, row.FinishedAt)
		if err != nil {
			return nil, fmt.Errorf("bad finished_at for match %s: %w", row.ID, err)
		}
		out = append(out, models.Match{
			ID:            row.ID,
			RoomID:        row.RoomID,
			WinnerID:      row.WinnerID,
			WinnerSession: row.WinnerSession,
			LoserSession:  row.LoserSession,
			Shots:         row.Shots,
			StartedAt:     started,
			FinishedAt:    finished,
		})
	}
	return out, nil
}
