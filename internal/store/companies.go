// internal/store/companies.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"grant-workers/internal/common/logger"
	"grant-workers/internal/models"
)

var ErrCompanyNotFound = errors.New("company not found")

const companyQuery = `SELECT id, name, industry, location, employee_count, annual_revenue, founded_date, certifications
		FROM companies
		WHERE id = $1`

// CompanyStore loads company profiles from postgres through a redis
// cache-aside layer. Cache failures never fail a read.
type CompanyStore struct {
	db     *sql.DB
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCompanyStore(db *sql.DB, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CompanyStore {
	return &CompanyStore{
		db:     db,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "company-store"}),
	}
}

func CompanyCacheKey(id string) string {
	return "company:profile:" + id
}

func (s *CompanyStore) Get(ctx context.Context, id string) (*models.CompanyProfile, error) {
	if profile, ok := s.fromCache(ctx, id); ok {
		return profile, nil
	}

	profile, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.redis != nil {
		data, _ := json.Marshal(profile)
		if err := s.redis.Set(ctx, CompanyCacheKey(id), data, s.ttl).Err(); err != nil {
			s.logger.Warn("failed to cache company profile", map[string]interface{}{
				"companyId": id,
				"error":     err.Error(),
			})
		}
	}
	return profile, nil
}

// Invalidate drops the cached profile so the next Get reads postgres.
func (s *CompanyStore) Invalidate(ctx context.Context, id string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, CompanyCacheKey(id)).Err()
}

func (s *CompanyStore) fromCache(ctx context.Context, id string) (*models.CompanyProfile, bool) {
	if s.redis == nil {
		return nil, false
	}

	val, err := s.redis.Get(ctx, CompanyCacheKey(id)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("company cache read failed", map[string]interface{}{
				"companyId": id,
				"error":     err.Error(),
			})
		}
		return nil, false
	}

	var profile models.CompanyProfile
	if err := json.Unmarshal([]byte(val), &profile); err != nil {
		s.logger.Warn("discarding corrupt cached company profile", map[string]interface{}{
			"companyId": id,
			"error":     err.Error(),
		})
		return nil, false
	}
	return &profile, true
}

func (s *CompanyStore) load(ctx context.Context, id string) (*models.CompanyProfile, error) {
	var (
		profile  models.CompanyProfile
		name     sql.NullString
		industry sql.NullString
		location sql.NullString
		staff    sql.NullInt64
		revenue  sql.NullFloat64
		founded  sql.NullTime
		certs    pq.StringArray
	)

	err := s.db.QueryRowContext(ctx, companyQuery, id).
		Scan(&profile.ID, &name, &industry, &location, &staff, &revenue, &founded, &certs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load company %s: %w", id, err)
	}

	profile.Name = name.String
	if industry.Valid {
		profile.Industry = &industry.String
	}
	if location.Valid {
		profile.Location = &location.String
	}
	if staff.Valid {
		n := int(staff.Int64)
		profile.EmployeeCount = &n
	}
	if revenue.Valid {
		profile.AnnualRevenue = &revenue.Float64
	}
	if founded.Valid {
		profile.FoundedDate = models.NewDate(founded.Time)
	}
	profile.Certifications = []string(certs)
	return &profile, nil
}
