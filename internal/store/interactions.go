// internal/store/interactions.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"grant-workers/internal/models"
)

// Row caps per history source.
const (
	ViewsLimit        = 100
	SavesLimit        = 100
	MatchesLimit      = 100
	ApplicationsLimit = 50
)

const (
	recentViewsQuery = `SELECT v.announcement_id, v.view_count, a.category, a.organization, v.last_viewed_at
		FROM user_announcement_views v
		JOIN announcements a ON a.id = v.announcement_id
		WHERE v.user_id = $1 AND v.last_viewed_at >= $2
		LIMIT $3`

	recentSavesQuery = `SELECT s.announcement_id, a.category, a.organization, s.created_at
		FROM saved_announcements s
		JOIN announcements a ON a.id = s.announcement_id
		WHERE s.user_id = $1 AND s.created_at >= $2
		LIMIT $3`

	recentMatchesQuery = `SELECT m.announcement_id, m.match_score, a.category, a.organization, m.created_at
		FROM matches m
		JOIN announcements a ON a.id = m.announcement_id
		WHERE m.user_id = $1 AND m.created_at >= $2
		LIMIT $3`

	recentApplicationsQuery = `SELECT t.announcement_id, a.category, a.organization, t.created_at
		FROM application_tracking t
		JOIN announcements a ON a.id = t.announcement_id
		WHERE t.user_id = $1 AND t.created_at >= $2
		LIMIT $3`
)

// InteractionStore reads a user's recent history, one table per kind.
type InteractionStore struct {
	db *sql.DB
}

func NewInteractionStore(db *sql.DB) *InteractionStore {
	return &InteractionStore{db: db}
}

func (s *InteractionStore) RecentViews(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error) {
	return s.query(ctx, models.InteractionView, recentViewsQuery, userID, since, ViewsLimit,
		func(rows *sql.Rows, in *models.Interaction, category, organization *sql.NullString) error {
			var count sql.NullInt64
			if err := rows.Scan(&in.AnnouncementID, &count, category, organization, &in.OccurredAt); err != nil {
				return err
			}
			in.Count = int(count.Int64)
			return nil
		})
}

func (s *InteractionStore) RecentSaves(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error) {
	return s.query(ctx, models.InteractionSave, recentSavesQuery, userID, since, SavesLimit, scanPlain)
}

func (s *InteractionStore) RecentMatches(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error) {
	return s.query(ctx, models.InteractionMatch, recentMatchesQuery, userID, since, MatchesLimit,
		func(rows *sql.Rows, in *models.Interaction, category, organization *sql.NullString) error {
			var score sql.NullFloat64
			if err := rows.Scan(&in.AnnouncementID, &score, category, organization, &in.OccurredAt); err != nil {
				return err
			}
			if score.Valid {
				in.Score = &score.Float64
			}
			return nil
		})
}

func (s *InteractionStore) RecentApplications(ctx context.Context, userID string, since time.Time) ([]models.Interaction, error) {
	return s.query(ctx, models.InteractionApplication, recentApplicationsQuery, userID, since, ApplicationsLimit, scanPlain)
}

type interactionScanner func(rows *sql.Rows, in *models.Interaction, category, organization *sql.NullString) error

func scanPlain(rows *sql.Rows, in *models.Interaction, category, organization *sql.NullString) error {
	return rows.Scan(&in.AnnouncementID, category, organization, &in.OccurredAt)
}

func (s *InteractionStore) query(ctx context.Context, kind models.InteractionKind, query, userID string, since time.Time, limit int, scan interactionScanner) ([]models.Interaction, error) {
	rows, err := s.db.QueryContext(ctx, query, userID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("recent %s: %w", kind, err)
	}
	defer rows.Close()

	out := make([]models.Interaction, 0)
	for rows.Next() {
		in := models.Interaction{Kind: kind}
		var category, organization sql.NullString
		if err := scan(rows, &in, &category, &organization); err != nil {
			return nil, fmt.Errorf("scan %s: %w", kind, err)
		}
		in.Category = category.String
		in.Organization = organization.String
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent %s: %w", kind, err)
	}
	return out, nil
}
