package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-workers/internal/common/logger"
	"grant-workers/internal/models"
)

var companyCols = []string{
	"id", "name", "industry", "location", "employee_count", "annual_revenue", "founded_date", "certifications",
}

func expectCompanyRow(mock sqlmock.Sqlmock, id string) {
	founded := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM companies\s+WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(companyCols).
			AddRow(id, "그랜트랩", "software", "서울특별시 강남구", 12, 150000.0, founded, "{venture,innobiz}"))
}

func expectedCompanyJSON(t *testing.T, id string) []byte {
	t.Helper()
	industry, location := "software", "서울특별시 강남구"
	staff, revenue := 12, 150000.0
	data, err := json.Marshal(&models.CompanyProfile{
		ID:             id,
		Name:           "그랜트랩",
		Industry:       &industry,
		Location:       &location,
		EmployeeCount:  &staff,
		AnnualRevenue:  &revenue,
		FoundedDate:    models.NewDate(time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)),
		Certifications: []string{"venture", "innobiz"},
	})
	require.NoError(t, err)
	return data
}

func newCompanyStore(t *testing.T, rdb redis.Cmdable) (*CompanyStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCompanyStore(db, rdb, 10*time.Minute, logger.NewTestLogger(t)), mock
}

// ==========================
// Cache-aside Tests
// ==========================

func TestCompanyStore_Get_MissThenHit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, mock := newCompanyStore(t, rdb)
	expectCompanyRow(mock, "c-1")

	first, err := s.Get(context.Background(), "c-1")
	require.NoError(t, err)

	assert.Equal(t, "그랜트랩", first.Name)
	assert.Equal(t, "software", *first.Industry)
	assert.Equal(t, 12, *first.EmployeeCount)
	assert.Equal(t, 150000.0, *first.AnnualRevenue)
	assert.Equal(t, []string{"venture", "innobiz"}, first.Certifications)
	require.NotNil(t, first.FoundedDate)
	assert.Equal(t, 2020, first.FoundedDate.Year())

	assert.True(t, mr.Exists(CompanyCacheKey("c-1")))
	assert.Equal(t, 10*time.Minute, mr.TTL(CompanyCacheKey("c-1")))

	second, err := s.Get(context.Background(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, *first.Location, *second.Location)
	assert.True(t, first.FoundedDate.Equal(second.FoundedDate.Time))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyStore_Get_CorruptCacheFallsBack(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, mr.Set(CompanyCacheKey("c-1"), "{not json"))
	s, mock := newCompanyStore(t, rdb)
	expectCompanyRow(mock, "c-1")

	got, err := s.Get(context.Background(), "c-1")

	require.NoError(t, err)
	assert.Equal(t, "c-1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompanyStore_Get_RedisDown(t *testing.T) {
	rdb, rmock := redismock.NewClientMock()
	s, mock := newCompanyStore(t, rdb)
	expectCompanyRow(mock, "c-1")

	rmock.ExpectGet(CompanyCacheKey("c-1")).SetErr(errors.New("connection refused"))
	rmock.ExpectSet(CompanyCacheKey("c-1"), expectedCompanyJSON(t, "c-1"), 10*time.Minute).SetErr(errors.New("connection refused"))

	got, err := s.Get(context.Background(), "c-1")

	require.NoError(t, err)
	assert.Equal(t, "c-1", got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestCompanyStore_Get_NullColumns(t *testing.T) {
	s, mock := newCompanyStore(t, nil)
	mock.ExpectQuery(`FROM companies`).
		WithArgs("c-2").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("c-2", nil, nil, nil, nil, nil, nil, nil))

	got, err := s.Get(context.Background(), "c-2")

	require.NoError(t, err)
	assert.Nil(t, got.Industry)
	assert.Nil(t, got.Location)
	assert.Nil(t, got.EmployeeCount)
	assert.Nil(t, got.AnnualRevenue)
	assert.Nil(t, got.FoundedDate)
	assert.Empty(t, got.Certifications)
}

func TestCompanyStore_Get_NotFound(t *testing.T) {
	s, mock := newCompanyStore(t, nil)
	mock.ExpectQuery(`FROM companies`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestCompanyStore_Invalidate(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s, _ := newCompanyStore(t, rdb)

	data, _ := json.Marshal(models.CompanyProfile{ID: "c-1"})
	require.NoError(t, mr.Set(CompanyCacheKey("c-1"), string(data)))

	require.NoError(t, s.Invalidate(context.Background(), "c-1"))
	assert.False(t, mr.Exists(CompanyCacheKey("c-1")))
}
