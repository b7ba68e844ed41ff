package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for user operations.
var (
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated means a token no longer identifies a usable account.
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrAccountDisabled = errors.New("account is deactivated")
	// ErrUserHasEvents is returned when deleting a user who still created events.
	ErrUserHasEvents = errors.New("user still owns events")
)

// User represents a registered user
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"isActive"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// PasswordChangedAt is zero until the first change. Tokens issued
	// before it are rejected.
	PasswordChangedAt time.Time `json:"-"`
	// ResetTokenHash is the hash of the outstanding password reset token, if any.
	ResetTokenHash      string    `json:"-"`
	ResetTokenExpiresAt time.Time `json:"-"`
}

// NewUser returns a new, active User with the given fields. ID is typically set by the repository on create.
func NewUser(name, email string, role Role, passwordHash string, createdAt time.Time) *User {
	return &User{
		Name:         name,
		Email:        email,
		Role:         role,
		IsActive:     true,
		PasswordHash: passwordHash,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// Principal returns the principal this user authenticates as.
func (u *User) Principal() Principal {
	return Principal{UserID: u.ID, Role: u.Role}
}

// SetPassword stores a new hash, records the change and drops any pending reset.
func (u *User) SetPassword(hash string, at time.Time) {
	u.PasswordHash = hash
	u.PasswordChangedAt = at
	u.ClearResetToken()
}

// ClearResetToken forgets the outstanding reset token.
func (u *User) ClearResetToken() {
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = time.Time{}
}

// ProfileUpdate is a user's edit of their own account. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// UserUpdate is an admin's edit of any account. Nil fields are left unchanged.
type UserUpdate struct {
	Name     *string
	Email    *string
	Role     *Role
	IsActive *bool
}

// UserStats summarises the user table for the admin dashboard.
// swagger:model UserStats
type UserStats struct {
	Total    int `json:"total" db:"total"`
	Active   int `json:"active" db:"active"`
	Inactive int `json:"inactive" db:"inactive"`
	Admins   int `json:"admins" db:"admins"`
	Users    int `json:"users" db:"users"`
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is what a verified token asserts about its holder.
type TokenClaims struct {
	UserID   string
	Role     Role
	IssuedAt time.Time
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(user *User) (string, error)
}

// TokenVerifier checks a token's signature and expiry and returns its claims.
type TokenVerifier interface {
	Verify(token string) (TokenClaims, error)
}

// Authenticator resolves a bearer token to the principal its account has now.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

// ResetTokens creates password reset tokens. Only the hash is ever stored.
type ResetTokens interface {
	New() (token, hash string, err error)
	Hash(token string) string
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	// Create inserts u and sets its ID. Returns ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByResetToken finds the user holding the reset token with this hash.
	GetByResetToken(ctx context.Context, tokenHash string) (*User, error)
	// List returns one page of users ordered by creation time and the total count.
	List(ctx context.Context, params PaginationParams) ([]*User, int, error)
	// Update writes every mutable field of u and refreshes UpdatedAt.
	Update(ctx context.Context, u *User) error
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
	// Delete removes the user. Returns ErrUserHasEvents while events reference them.
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (*UserStats, error)
}

// AuthService registers and authenticates users and manages their own accounts.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	Profile(ctx context.Context, userID string) (*User, error)
	UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*User, error)
	// ChangePassword replaces the password and returns a fresh token; older
	// tokens stop working.
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (token string, err error)
	// ForgotPassword mails a reset link when the address belongs to an active
	// account. Unknown addresses are not reported.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	CreateAdmin(ctx context.Context, name, email, password string) (*User, error)
}

// UserService is the admin-facing user management API.
type UserService interface {
	ListUsers(ctx context.Context, params PaginationParams) ([]*User, int, error)
	GetUser(ctx context.Context, id string) (*User, error)
	SetRole(ctx context.Context, actor Principal, id string, role Role) (*User, error)
	UpdateUser(ctx context.Context, actor Principal, id string, in UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, actor Principal, id string) error
	ToggleActive(ctx context.Context, actor Principal, id string) (*User, error)
	Stats(ctx context.Context) (*UserStats, error)
}
