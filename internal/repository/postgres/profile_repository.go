package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-matchmaking-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type profileRepository struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	query := `
		SELECT
			user_id, name, age, height_cm, COALESCE(hair_color, ''), gender,
			latitude, longitude, is_verified, is_active, is_timeout,
			sports_preferences, image_file_ids, COALESCE(description, ''), created_at
		FROM user_profiles WHERE user_id = $1`

	var p domain.Profile
	var sports, images []string

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.Name, &p.Age, &p.HeightCm, &p.HairColor, &p.Gender,
		&p.Latitude, &p.Longitude, &p.IsVerified, &p.IsActive, &p.IsTimeout,
		pq.Array(&sports), pq.Array(&images), &p.Description, &p.CreatedAt,
	)
	p.Sports = sports
	p.ImageFileIDs = images

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *profileRepository) FetchPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	query := `
		SELECT
			user_id, latitude, longitude, max_distance_km,
			min_age, max_age, min_height_cm, max_height_cm,
			preferred_genders, preferred_sports, max_results
		FROM user_preferences WHERE user_id = $1`

	var prefs domain.Preferences
	var genders, sports []string

	err := r.db.QueryRow(ctx, query, userID).Scan(
		&prefs.UserID, &prefs.Latitude, &prefs.Longitude, &prefs.MaxDistanceKm,
		&prefs.MinAge, &prefs.MaxAge, &prefs.MinHeightCm, &prefs.MaxHeightCm,
		pq.Array(&genders), pq.Array(&sports), &prefs.MaxResults,
	)
	prefs.PreferredGenders = genders
	prefs.PreferredSports = sports

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &prefs, nil
}

// FetchCandidates pulls the geo-bounded candidate pool. The bounding box is
// a superset pre-filter; the exact distance check happens in the pipeline.
func (r *profileRepository) FetchCandidates(ctx context.Context, box domain.BoundingBox, excludeIDs []string, limit int) ([]domain.Profile, error) {
	query := `
		SELECT
			user_id, name, age, height_cm, COALESCE(hair_color, ''), gender,
			latitude, longitude, is_verified, is_active, is_timeout,
			sports_preferences, image_file_ids, COALESCE(description, ''), created_at
		FROM user_profiles
		WHERE latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		  AND is_active = TRUE
		  AND user_id <> ALL($5)
		LIMIT $6`

	// A nil slice encodes as SQL NULL and "<> ALL(NULL)" excludes every row;
	// an empty array passes every row, which is the intended no-op.
	if excludeIDs == nil {
		excludeIDs = []string{}
	}

	rows, err := r.db.Query(ctx, query,
		box.MinLat, box.MaxLat, box.MinLon, box.MaxLon,
		excludeIDs, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Profile
	for rows.Next() {
		var p domain.Profile
		var sports, images []string
		err := rows.Scan(
			&p.UserID, &p.Name, &p.Age, &p.HeightCm, &p.HairColor, &p.Gender,
			&p.Latitude, &p.Longitude, &p.IsVerified, &p.IsActive, &p.IsTimeout,
			pq.Array(&sports), pq.Array(&images), &p.Description, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Sports = sports
		p.ImageFileIDs = images
		candidates = append(candidates, p)
	}
	return candidates, rows.Err()
}
