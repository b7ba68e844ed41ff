package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventcalendar/internal/domain"
)

type authenticator struct {
	verifier       domain.TokenVerifier
	userRepo       domain.UserRepository
	contextTimeout time.Duration
}

// NewAuthenticator returns an Authenticator that checks the token and then
// loads the account, so role changes, deactivation and password changes take
// effect on the next request rather than when the token expires.
func NewAuthenticator(verifier domain.TokenVerifier, userRepo domain.UserRepository, timeout time.Duration) domain.Authenticator {
	return &authenticator{verifier: verifier, userRepo: userRepo, contextTimeout: timeout}
}

func (a *authenticator) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	claims, err := a.verifier.Verify(token)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.contextTimeout)
	defer cancel()

	u, err := a.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Principal{}, domain.ErrUnauthenticated
		}
		return domain.Principal{}, fmt.Errorf("get user: %w", err)
	}
	if !u.IsActive {
		return domain.Principal{}, domain.ErrAccountDisabled
	}
	// Token timestamps have second precision.
	if claims.IssuedAt.Before(u.PasswordChangedAt.Truncate(time.Second)) {
		return domain.Principal{}, domain.ErrUnauthenticated
	}
	return u.Principal(), nil
}
