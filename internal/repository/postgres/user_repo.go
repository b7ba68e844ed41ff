package postgres

import (
	"context"
	"database/sql"
	"time"

	"eventcalendar/internal/domain"
)

const userColumns = `id, name, email, password_hash, role, is_active, password_changed_at, reset_token_hash, reset_token_expires_at, created_at, updated_at`

type userRow struct {
	ID                  string         `db:"id"`
	Name                string         `db:"name"`
	Email               string         `db:"email"`
	PasswordHash        string         `db:"password_hash"`
	Role                string         `db:"role"`
	IsActive            bool           `db:"is_active"`
	PasswordChangedAt   sql.NullTime   `db:"password_changed_at"`
	ResetTokenHash      sql.NullString `db:"reset_token_hash"`
	ResetTokenExpiresAt sql.NullTime   `db:"reset_token_expires_at"`
	CreatedAt           time.Time      `db:"created_at"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

func (r *userRow) toDomain() *domain.User {
	u := &domain.User{
		ID:             r.ID,
		Name:           r.Name,
		Email:          r.Email,
		Role:           domain.Role(r.Role),
		IsActive:       r.IsActive,
		PasswordHash:   r.PasswordHash,
		ResetTokenHash: r.ResetTokenHash.String,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
	if r.PasswordChangedAt.Valid {
		u.PasswordChangedAt = r.PasswordChangedAt.Time.UTC()
	}
	if r.ResetTokenExpiresAt.Valid {
		u.ResetTokenExpiresAt = r.ResetTokenExpiresAt.Time.UTC()
	}
	return u
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type userRepository struct {
	pool *Pool
}

func NewUserRepository(pool *Pool) domain.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err = db.QueryRowxContext(ctx, query, u.Name, u.Email, u.PasswordHash, string(u.Role), u.IsActive, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return classify(err)
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByResetToken(ctx context.Context, tokenHash string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE reset_token_hash = $1`, tokenHash)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, err
	}
	var row userRow
	if err := db.GetContext(ctx, &row, query, arg); err != nil {
		return nil, classify(err)
	}
	return row.toDomain(), nil
}

func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, classify(err)
	}
	var rows []userRow
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC, id ASC LIMIT $1 OFFSET $2`
	if err := db.SelectContext(ctx, &rows, query, params.Limit(), params.Offset()); err != nil {
		return nil, 0, classify(err)
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toDomain())
	}
	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return err
	}
	query := `
		UPDATE users SET
			name = $1, email = $2, password_hash = $3, role = $4, is_active = $5,
			password_changed_at = $6, reset_token_hash = $7, reset_token_expires_at = $8,
			updated_at = now()
		WHERE id = $9
		RETURNING updated_at
	`
	var updatedAt time.Time
	err = db.QueryRowxContext(ctx, query,
		u.Name, u.Email, u.PasswordHash, string(u.Role), u.IsActive,
		nullTime(u.PasswordChangedAt), nullString(u.ResetTokenHash), nullTime(u.ResetTokenExpiresAt),
		u.ID,
	).Scan(&updatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return classify(err)
	}
	u.UpdatedAt = updatedAt.UTC()
	return nil
}

func (r *userRepository) UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE users SET role = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + userColumns
	var row userRow
	if err := db.GetContext(ctx, &row, query, string(role), id); err != nil {
		return nil, classify(err)
	}
	return row.toDomain(), nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserHasEvents
		}
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepository) Stats(ctx context.Context) (*domain.UserStats, error) {
	db, err := r.pool.DB(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE NOT is_active) AS inactive,
			COUNT(*) FILTER (WHERE role = 'admin') AS admins,
			COUNT(*) FILTER (WHERE role = 'user') AS users
		FROM users
	`
	var stats domain.UserStats
	if err := db.GetContext(ctx, &stats, query); err != nil {
		return nil, classify(err)
	}
	return &stats, nil
}
