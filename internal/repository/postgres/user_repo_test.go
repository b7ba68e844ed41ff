package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventcalendar/internal/domain"
)

var userColumnNames = []string{
	"id", "name", "email", "password_hash", "role", "is_active",
	"password_changed_at", "reset_token_hash", "reset_token_expires_at", "created_at", "updated_at",
}

func addUserRow(rows *sqlmock.Rows, id, name, email, role string, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, name, email, "hash", role, true, nil, nil, nil, created, created)
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
		errIs   error
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users \(name, email, password_hash, role, is_active, created_at, updated_at\)`).
					WithArgs("Alice", "alice@example.com", "hash", "user", true, created, created).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("user-uuid-1"))
			},
			wantID: "user-uuid-1",
		},
		{
			name: "unique violation returns ErrDuplicateEmail",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "23505"})
			},
			wantErr: true,
			errIs:   domain.ErrDuplicateEmail,
		},
		{
			name: "connection refused",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pq.Error{Code: "08001"})
			},
			wantErr: true,
			errIs:   domain.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, mock := newMockPool(t)
			tt.mock(mock)
			repo := NewUserRepository(pool)

			u := domain.NewUser("Alice", "alice@example.com", domain.RoleUser, "hash", created)
			err := repo.Create(ctx, u)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, u.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectQuery(`SELECT id, name, email, password_hash, role, is_active, .* FROM users WHERE email = \$1`).
			WithArgs("alice@example.com").
			WillReturnRows(addUserRow(sqlmock.NewRows(userColumnNames), "user-1", "Alice", "alice@example.com", "admin", created))

		u, err := NewUserRepository(pool).GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, "user-1", u.ID)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		assert.Equal(t, "hash", u.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectQuery(`FROM users WHERE email`).WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepository(pool).GetByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserRepository_List(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	pool, mock := newMockPool(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM users ORDER BY created_at ASC, id ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 2).
		WillReturnRows(addUserRow(sqlmock.NewRows(userColumnNames), "user-3", "Carol", "carol@example.com", "user", created))

	users, total, err := NewUserRepository(pool).List(ctx, domain.PaginationParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, users, 1)
	assert.Equal(t, "Carol", users[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateRole(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectQuery(`UPDATE users SET role = \$1`).
			WithArgs("admin", "user-1").
			WillReturnRows(addUserRow(sqlmock.NewRows(userColumnNames), "user-1", "Alice", "alice@example.com", "admin", created))

		u, err := NewUserRepository(pool).UpdateRole(ctx, "user-1", domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleAdmin, u.Role)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		pool, mock := newMockPool(t)
		mock.ExpectQuery(`UPDATE users`).WillReturnError(sql.ErrNoRows)

		_, err := NewUserRepository(pool).UpdateRole(ctx, "missing", domain.RoleAdmin)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUserRepository_GetByResetToken(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := created.Add(time.Hour)

	pool, mock := newMockPool(t)
	mock.ExpectQuery(`FROM users WHERE reset_token_hash = \$1`).
		WithArgs("digest").
		WillReturnRows(sqlmock.NewRows(userColumnNames).
			AddRow("user-1", "Alice", "alice@example.com", "hash", "user", false, created, "digest", expires, created, created))

	u, err := NewUserRepository(pool).GetByResetToken(ctx, "digest")
	require.NoError(t, err)
	assert.False(t, u.IsActive)
	assert.Equal(t, "digest", u.ResetTokenHash)
	assert.Equal(t, expires, u.ResetTokenExpiresAt)
	assert.Equal(t, created, u.PasswordChangedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	tests := []struct {
		name  string
		user  func() *domain.User
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "clears reset token",
			user: func() *domain.User {
				u := domain.NewUser("Alice", "alice@example.com", domain.RoleUser, "hash", created)
				u.ID = "user-1"
				return u
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE users SET`).
					WithArgs("Alice", "alice@example.com", "hash", "user", true, nil, nil, nil, "user-1").
					WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))
			},
		},
		{
			name: "stores reset token",
			user: func() *domain.User {
				u := domain.NewUser("Alice", "alice@example.com", domain.RoleUser, "hash", created)
				u.ID = "user-1"
				u.ResetTokenHash = "digest"
				u.ResetTokenExpiresAt = updated
				return u
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE users SET`).
					WithArgs("Alice", "alice@example.com", "hash", "user", true, nil, "digest", updated, "user-1").
					WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))
			},
		},
		{
			name: "email taken",
			user: func() *domain.User { return &domain.User{ID: "user-1", Role: domain.RoleUser} },
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE users SET`).WillReturnError(&pq.Error{Code: "23505"})
			},
			errIs: domain.ErrDuplicateEmail,
		},
		{
			name: "missing",
			user: func() *domain.User { return &domain.User{ID: "user-9", Role: domain.RoleUser} },
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`UPDATE users SET`).WillReturnError(sql.ErrNoRows)
			},
			errIs: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, mock := newMockPool(t)
			tt.mock(mock)
			u := tt.user()
			err := NewUserRepository(pool).Update(ctx, u)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, updated, u.UpdatedAt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "deleted",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).WithArgs("user-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM users`).WillReturnResult(sqlmock.NewResult(0, 0))
			},
			errIs: domain.ErrNotFound,
		},
		{
			name: "still referenced by events",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM users`).WillReturnError(&pq.Error{Code: "23503"})
			},
			errIs: domain.ErrUserHasEvents,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, mock := newMockPool(t)
			tt.mock(mock)
			err := NewUserRepository(pool).Delete(ctx, "user-1")
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_Stats(t *testing.T) {
	pool, mock := newMockPool(t)
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE is_active\)`).
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "inactive", "admins", "users"}).
			AddRow(5, 4, 1, 2, 3))

	stats, err := NewUserRepository(pool).Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.UserStats{Total: 5, Active: 4, Inactive: 1, Admins: 2, Users: 3}, stats)
	require.NoError(t, mock.ExpectationsWereMet())
}
