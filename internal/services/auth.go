package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"eventcalendar/internal/domain"
)

// resetTokenTTL bounds how long a password reset link stays usable.
const resetTokenTTL = time.Hour

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	resetTokens    domain.ResetTokens
	emailService   domain.EmailService
	calendarURL    string
	contextTimeout time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

// NewAuthService creates an AuthService. emailService may be nil, in which
// case no welcome mail is sent and password resets cannot be requested.
// calendarURL is the frontend base that welcome and reset links point at.
func NewAuthService(userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	resetTokens domain.ResetTokens,
	emailService domain.EmailService,
	calendarURL string,
	timeout time.Duration,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		resetTokens:    resetTokens,
		emailService:   emailService,
		calendarURL:    calendarURL,
		contextTimeout: timeout,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	u, err := s.createUser(ctx, name, email, password, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	if s.emailService != nil {
		data := &domain.WelcomeEmailData{Email: u.Email, Name: u.Name, CalendarURL: s.calendarURL}
		if err := s.emailService.SendWelcome(ctx, data); err != nil {
			// Registration already succeeded; the email is best effort.
			s.logger.WarnContext(ctx, "welcome email failed", "userID", u.ID, "err", err)
		}
	}
	return u, nil
}

func (s *authService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	u, err := s.createUser(ctx, name, email, password, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "admin user created", "userID", u.ID, "email", u.Email)
	return u, nil
}

func (s *authService) createUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	if err := domain.ValidateRegistration(name, email, password); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := domain.NewUser(strings.TrimSpace(name), domain.NormalizeEmail(email), role, hash, s.now().UTC())
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := domain.ValidateLogin(email, password); err != nil {
		return "", nil, err
	}
	u, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if !u.IsActive {
		return "", nil, domain.ErrAccountDisabled
	}
	token, err := s.issuer.Issue(u)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, u, nil
}

func (s *authService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, in domain.ProfileUpdate) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := domain.ValidateProfileUpdate(in); err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	applyUserUpdate(u, domain.UserUpdate{Name: in.Name, Email: in.Email})
	if err := saveUser(ctx, s.userRepo, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := domain.ValidatePasswordChange(currentPassword, newPassword); err != nil {
		return "", err
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(u.PasswordHash, currentPassword); err != nil {
		return "", domain.NewValidationError("currentPassword", "Current password is incorrect")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	u.SetPassword(hash, s.now().UTC())
	if err := saveUser(ctx, s.userRepo, u); err != nil {
		return "", err
	}
	token, err := s.issuer.Issue(u)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.InfoContext(ctx, "password changed", "userID", u.ID)
	return token, nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := domain.ValidateForgotPassword(email); err != nil {
		return err
	}
	if s.emailService == nil {
		return errors.New("password reset email is not configured")
	}
	u, err := s.userRepo.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.InfoContext(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		s.logger.InfoContext(ctx, "password reset requested for inactive user", "userID", u.ID)
		return nil
	}

	token, hash, err := s.resetTokens.New()
	if err != nil {
		return err
	}
	u.ResetTokenHash = hash
	u.ResetTokenExpiresAt = s.now().UTC().Add(resetTokenTTL)
	if err := saveUser(ctx, s.userRepo, u); err != nil {
		return err
	}

	data := &domain.PasswordResetEmailData{
		Email:    u.Email,
		Name:     u.Name,
		ResetURL: strings.TrimRight(s.calendarURL, "/") + "/reset-password?token=" + url.QueryEscape(token),
	}
	if err := s.emailService.SendPasswordReset(ctx, data); err != nil {
		u.ClearResetToken()
		if clearErr := s.userRepo.Update(ctx, u); clearErr != nil {
			s.logger.WarnContext(ctx, "clearing unsent reset token failed", "userID", u.ID, "err", clearErr)
		}
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := domain.ValidatePasswordReset(token, newPassword); err != nil {
		return err
	}
	invalid := domain.NewValidationError("token", "Invalid or expired reset token")
	u, err := s.userRepo.GetByResetToken(ctx, s.resetTokens.Hash(strings.TrimSpace(token)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return invalid
		}
		return fmt.Errorf("get user: %w", err)
	}
	now := s.now().UTC()
	if !u.IsActive || !now.Before(u.ResetTokenExpiresAt) {
		return invalid
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.SetPassword(hash, now)
	if err := saveUser(ctx, s.userRepo, u); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "password reset", "userID", u.ID)
	return nil
}

// applyUserUpdate copies the set fields of in onto u.
func applyUserUpdate(u *domain.User, in domain.UserUpdate) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = domain.NormalizeEmail(*in.Email)
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.IsActive != nil {
		u.IsActive = *in.IsActive
	}
}

func saveUser(ctx context.Context, repo domain.UserRepository, u *domain.User) error {
	if err := repo.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return domain.ErrDuplicateEmail
		case errors.Is(err, domain.ErrNotFound):
			return domain.ErrNotFound
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}
