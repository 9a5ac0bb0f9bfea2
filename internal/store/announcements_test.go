package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var announcementCols = []string{
	"id", "title", "organization", "category", "support_type", "support_amount", "application_end", "eligibility_criteria",
}

const criteriaJSON = `{"industries":{"included":["소프트웨어"],"excluded":[]},"regions":{"included":["전국"],"excluded":[]},"employeeCount":{"min":null,"max":300}}`

func newMockDB(t *testing.T) (*AnnouncementStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAnnouncementStore(db), mock
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAnnouncementStore_ActiveCandidates(t *testing.T) {
	s, mock := newMockDB(t)
	now := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(announcementCols).
		AddRow("a-1", "AI 바우처", "과기정통부", "R&D", "grant", "최대 3억", end, []byte(criteriaJSON)).
		AddRow("a-2", "수출 지원", nil, nil, nil, nil, nil, []byte(`null`))
	mock.ExpectQuery(`FROM announcements\s+WHERE status = 'active'\s+AND eligibility_criteria IS NOT NULL\s+AND application_end >= \$1\s+ORDER BY application_end ASC\s+LIMIT \$2`).
		WithArgs(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 200).
		WillReturnRows(rows)

	got, err := s.ActiveCandidates(context.Background(), now, 200)

	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "a-1", first.ID)
	assert.Equal(t, "과기정통부", first.Organization)
	require.NotNil(t, first.ApplicationEnd)
	assert.True(t, first.ApplicationEnd.Equal(end))
	require.NotNil(t, first.Eligibility)
	assert.Equal(t, []string{"소프트웨어"}, first.Eligibility.Industries.Included)
	require.NotNil(t, first.Eligibility.EmployeeCount)
	assert.Nil(t, first.Eligibility.EmployeeCount.Min)
	assert.Equal(t, 300.0, *first.Eligibility.EmployeeCount.Max)

	second := got[1]
	assert.Empty(t, second.Organization)
	assert.Nil(t, second.ApplicationEnd)
	assert.Nil(t, second.Eligibility)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementStore_ByIDs(t *testing.T) {
	s, mock := newMockDB(t)
	ids := []string{"a-1", "a-9"}

	mock.ExpectQuery(`FROM announcements\s+WHERE id = ANY\(\$1\)`).
		WithArgs(pq.Array(ids)).
		WillReturnRows(sqlmock.NewRows(announcementCols).
			AddRow("a-1", "AI 바우처", "과기정통부", "R&D", nil, nil, nil, nil))

	got, err := s.ByIDs(context.Background(), ids)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Eligibility)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementStore_ByIDs_Empty(t *testing.T) {
	s, mock := newMockDB(t)

	got, err := s.ByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementStore_CreatedSince(t *testing.T) {
	s, mock := newMockDB(t)
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	since := now.Add(-24 * time.Hour)

	mock.ExpectQuery(`AND created_at >= \$1\s+AND application_end >= \$2\s+ORDER BY created_at DESC\s+LIMIT \$3`).
		WithArgs(since, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), 500).
		WillReturnRows(sqlmock.NewRows(announcementCols))

	got, err := s.CreatedSince(context.Background(), since, now, 500)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestAnnouncementStore_Errors(t *testing.T) {
	t.Run("query error", func(t *testing.T) {
		s, mock := newMockDB(t)
		mock.ExpectQuery(`FROM announcements`).WillReturnError(errors.New("connection reset"))

		_, err := s.ActiveCandidates(context.Background(), time.Now(), 10)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "active_candidates")
	})

	t.Run("malformed criteria", func(t *testing.T) {
		s, mock := newMockDB(t)
		mock.ExpectQuery(`FROM announcements`).
			WillReturnRows(sqlmock.NewRows(announcementCols).
				AddRow("a-1", "t", nil, nil, nil, nil, nil, []byte(`{"industries": 3}`)))

		_, err := s.ActiveCandidates(context.Background(), time.Now(), 10)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "a-1")
	})
}
