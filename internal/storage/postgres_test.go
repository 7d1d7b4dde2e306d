package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"gitlab.com/timkado/api/daisi-meal-photo-bot/internal/apperrors"
	"gitlab.com/timkado/api/daisi-meal-photo-bot/pkg/logger"
)

// AnyTime matches any time.Time argument.
type AnyTime struct{}

func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

// AnyJSON matches a JSON column value.
type AnyJSON struct{}

func (a AnyJSON) Match(v driver.Value) bool {
	switch v.(type) {
	case []byte, string, nil:
		return true
	default:
		return false
	}
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	logger.Log = zaptest.NewLogger(t).Named("test")

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 db,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 gormLogger.Default.LogMode(gormLogger.Silent),
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return gormDB, mock
}

func testContext(t *testing.T) context.Context {
	return logger.WithLogger(context.Background(), zaptest.NewLogger(t))
}

func TestIsTransientError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "deadline exceeded", err: context.DeadlineExceeded, expected: true},
		{name: "wrapped deadline exceeded", err: fmt.Errorf("op: %w", context.DeadlineExceeded), expected: true},
		{name: "record not found", err: gorm.ErrRecordNotFound, expected: false},
		{name: "pg connection exception", err: &pgconn.PgError{Code: "08006"}, expected: true},
		{name: "pg insufficient resources", err: &pgconn.PgError{Code: "53300"}, expected: true},
		{name: "pg deadlock", err: &pgconn.PgError{Code: "40P01"}, expected: true},
		{name: "pg serialization failure", err: &pgconn.PgError{Code: "40001"}, expected: true},
		{name: "pg syntax error", err: &pgconn.PgError{Code: "42601"}, expected: false},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), expected: true},
		{name: "i/o timeout", err: errors.New("read tcp: i/o timeout"), expected: true},
		{name: "db starting up", err: errors.New("FATAL: the database system is starting up"), expected: true},
		{name: "generic error", err: errors.New("some other database error"), expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, isTransientError(tc.err))
		})
	}
}

func TestRetryableOperation(t *testing.T) {
	ctx := testContext(t)

	t.Run("retries transient errors", func(t *testing.T) {
		attempts := 0
		err := retryableOperation(ctx, newRetryPolicy(ctx, time.Second), "test", func() error {
			attempts++
			if attempts < 3 {
				return errors.New("connection reset by peer")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		attempts := 0
		err := retryableOperation(ctx, newRetryPolicy(ctx, time.Second), "test", func() error {
			attempts++
			return gorm.ErrRecordNotFound
		})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.Equal(t, 1, attempts)
	})

	t.Run("stops when context is done", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		err := retryableOperation(cctx, newRetryPolicy(cctx, time.Second), "test", func() error {
			return errors.New("connection refused")
		})
		assert.Error(t, err)
	})
}

func TestPostgresRepo_Ping(t *testing.T) {
	gormDB, mock := newMockDB(t)
	repo := &PostgresRepo{db: gormDB}

	mock.ExpectPing()
	assert.NoError(t, repo.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err := repo.Ping(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrDatabase)
}

func TestPostgresRepo_Close(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := &PostgresRepo{db: gormDB}

		mock.ExpectClose()
		assert.NoError(t, repo.Close(context.Background()))
	})

	t.Run("close fails", func(t *testing.T) {
		gormDB, mock := newMockDB(t)
		repo := &PostgresRepo{db: gormDB}

		mock.ExpectClose().WillReturnError(errors.New("db close error"))
		err := repo.Close(context.Background())
		assert.ErrorContains(t, err, "failed to close SQL DB")
		assert.ErrorContains(t, err, "db close error")
	})
}

func TestCheckConstraintViolation(t *testing.T) {
	testCases := []struct {
		name     string
		in       error
		expected error
		fragment string
	}{
		{name: "nil", in: nil, expected: nil},
		{name: "record not found", in: gorm.ErrRecordNotFound, expected: apperrors.ErrNotFound, fragment: "record not found"},
		{name: "translated duplicate", in: gorm.ErrDuplicatedKey, expected: apperrors.ErrDuplicate},
		{name: "unique violation", in: &pgconn.PgError{Code: "23505", ConstraintName: "meal_logs_pkey"}, expected: apperrors.ErrDuplicate, fragment: "meal_logs_pkey"},
		{name: "foreign key violation", in: &pgconn.PgError{Code: "23503", ConstraintName: "fk_meal_logs_user"}, expected: apperrors.ErrBadRequest, fragment: "fk_meal_logs_user"},
		{name: "not null violation", in: &pgconn.PgError{Code: "23502", ColumnName: "user_id"}, expected: apperrors.ErrBadRequest, fragment: "user_id"},
		{name: "invalid text", in: &pgconn.PgError{Code: "22P02", DataTypeName: "uuid"}, expected: apperrors.ErrBadRequest, fragment: "uuid"},
		{name: "unhandled pg code", in: &pgconn.PgError{Code: "XX000"}, expected: apperrors.ErrDatabase, fragment: "XX000"},
		{name: "generic", in: errors.New("boom"), expected: apperrors.ErrDatabase, fragment: "boom"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkConstraintViolation(tc.in)
			if tc.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.expected)
			assert.ErrorIs(t, err, tc.in)
			if tc.fragment != "" {
				assert.Contains(t, err.Error(), tc.fragment)
			}
		})
	}
}
