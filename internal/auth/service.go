package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Service signs users in and out and authenticates requests.
type Service struct {
	verifier *Verifier
	registry Registry
	state    *State
	logger   *zap.Logger
}

func NewService(v *Verifier, r Registry, s *State, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{verifier: v, registry: r, state: s, logger: logger}
}

func (s *Service) State() *State { return s.state }

// SignIn verifies a provider token, records the session and announces the
// sign-in. It returns the user and the token's expiry.
func (s *Service) SignIn(ctx context.Context, token string) (*Identity, time.Time, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, time.Time{}, err
	}
	if err := s.registry.Register(ctx, claims, token); err != nil {
		return nil, time.Time{}, fmt.Errorf("register session: %w", err)
	}
	id := claims.Identity()
	s.logger.Info("signed in", zap.String("user_id", id.UserID))
	s.state.Publish(Event{Kind: SignedIn, UserID: id.UserID})
	return id, claims.ExpiresAt.Time, nil
}

// Authenticate resolves the user behind a token that was previously
// signed in and has not been revoked.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	ok, err := s.registry.Active(ctx, claims, token)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	if !ok {
		return nil, ErrRevoked
	}
	return claims.Identity(), nil
}

// SignOut revokes the session and announces the sign-out. An expired or
// malformed token has nothing to revoke and is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.verifier.Verify(token)
	if errors.Is(err, ErrInvalidToken) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.registry.Revoke(ctx, claims, token); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.logger.Info("signed out", zap.String("user_id", claims.Subject))
	s.state.Publish(Event{Kind: SignedOut, UserID: claims.Subject})
	return nil
}
