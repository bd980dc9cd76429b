package postgres

import (
	"context"
	"fmt"

	"go-matchmaking-backend/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type eventRepository struct {
	db *pgxpool.Pool
}

func NewEventRepository(db *pgxpool.Pool) domain.EventRepository {
	return &eventRepository{db: db}
}

// Record stores the interaction durably. The seen_profiles pair is upserted
// so repeated interactions keep a single row with the latest event type.
func (r *eventRepository) Record(ctx context.Context, event *domain.MatchEvent) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	insertEvent := `
		INSERT INTO match_events (id, user_id, target_user_id, event_type, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.Exec(ctx, insertEvent,
		event.ID, event.UserID, event.TargetUserID, event.EventType, event.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	upsertSeen := `
		INSERT INTO seen_profiles (user_id, target_user_id, event_type, seen_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, target_user_id)
		DO UPDATE SET
			event_type = EXCLUDED.event_type,
			seen_at = EXCLUDED.seen_at`
	if _, err := tx.Exec(ctx, upsertSeen,
		event.UserID, event.TargetUserID, event.EventType,
	); err != nil {
		return fmt.Errorf("failed to upsert seen profile: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *eventRepository) GetSeenProfiles(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT target_user_id FROM seen_profiles WHERE user_id = $1 ORDER BY seen_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch seen profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
