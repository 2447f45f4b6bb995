package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	t.Cleanup(func() { sqlDB.Close() })
	return db, mock
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "avatar_url", "created_at", "updated_at", "deleted_at"}).
		AddRow(1, "test@example.com", "Test", "User", nil, now, now, nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .+`).
		WillReturnRows(rows)

	user, err := repo.FindByEmail("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByEmail_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE email = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "avatar_url", "created_at", "updated_at", "deleted_at"}).
		AddRow(42, "test@example.com", "Test", "User", nil, now, now, nil)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = .+`).
		WillReturnRows(rows)

	user, err := repo.FindByID(42)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
