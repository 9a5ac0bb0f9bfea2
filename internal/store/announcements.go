// internal/store/announcements.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"grant-workers/internal/models"
)

const announcementColumns = `id, title, organization, category, support_type, support_amount, application_end, eligibility_criteria`

const (
	activeCandidatesQuery = `SELECT ` + announcementColumns + `
		FROM announcements
		WHERE status = 'active'
		  AND eligibility_criteria IS NOT NULL
		  AND application_end >= $1
		ORDER BY application_end ASC
		LIMIT $2`

	announcementsByIDQuery = `SELECT ` + announcementColumns + `
		FROM announcements
		WHERE id = ANY($1)`

	createdSinceQuery = `SELECT ` + announcementColumns + `
		FROM announcements
		WHERE status = 'active'
		  AND eligibility_criteria IS NOT NULL
		  AND created_at >= $1
		  AND application_end >= $2
		ORDER BY created_at DESC
		LIMIT $3`
)

// AnnouncementStore reads recommendation candidates from postgres.
type AnnouncementStore struct {
	db *sql.DB
}

func NewAnnouncementStore(db *sql.DB) *AnnouncementStore {
	return &AnnouncementStore{db: db}
}

// ActiveCandidates returns active, parsed announcements whose application
// period has not ended on the given day, soonest deadline first.
func (s *AnnouncementStore) ActiveCandidates(ctx context.Context, today time.Time, limit int) ([]*models.Announcement, error) {
	return s.query(ctx, "active_candidates", activeCandidatesQuery, dateOnly(today), limit)
}

// ByIDs returns the requested announcements regardless of status. Missing
// IDs are silently skipped.
func (s *AnnouncementStore) ByIDs(ctx context.Context, ids []string) ([]*models.Announcement, error) {
	if len(ids) == 0 {
		return []*models.Announcement{}, nil
	}
	return s.query(ctx, "announcements_by_id", announcementsByIDQuery, pq.Array(ids))
}

// CreatedSince returns active, parsed announcements registered after since,
// newest first.
func (s *AnnouncementStore) CreatedSince(ctx context.Context, since, today time.Time, limit int) ([]*models.Announcement, error) {
	return s.query(ctx, "created_since", createdSinceQuery, since, dateOnly(today), limit)
}

func (s *AnnouncementStore) query(ctx context.Context, name, query string, args ...interface{}) ([]*models.Announcement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer rows.Close()

	out := make([]*models.Announcement, 0)
	for rows.Next() {
		ann, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, ann)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func scanAnnouncement(rows *sql.Rows) (*models.Announcement, error) {
	var (
		ann            models.Announcement
		title          sql.NullString
		organization   sql.NullString
		category       sql.NullString
		supportType    sql.NullString
		supportAmount  sql.NullString
		applicationEnd sql.NullTime
		criteria       []byte
	)
	if err := rows.Scan(&ann.ID, &title, &organization, &category, &supportType, &supportAmount, &applicationEnd, &criteria); err != nil {
		return nil, fmt.Errorf("scan announcement: %w", err)
	}

	ann.Title = title.String
	ann.Organization = organization.String
	ann.Category = category.String
	ann.SupportType = supportType.String
	ann.SupportAmount = supportAmount.String
	if applicationEnd.Valid {
		ann.ApplicationEnd = models.NewDate(applicationEnd.Time)
	}

	if len(criteria) > 0 && string(criteria) != "null" {
		var c models.EligibilityCriteria
		if err := json.Unmarshal(criteria, &c); err != nil {
			return nil, fmt.Errorf("decode eligibility_criteria for %s: %w", ann.ID, err)
		}
		ann.Eligibility = &c
	}
	return &ann, nil
}

// dateOnly truncates to the UTC calendar day used for deadline comparisons.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
