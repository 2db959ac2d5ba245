package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/auth"
	"github.com/spec-kit/account-service/internal/domain"
	"github.com/spec-kit/account-service/internal/events"
	apperrors "github.com/spec-kit/account-service/pkg/util/errorutil"
)

const maxSwapAttempts = 3

var errSessionContention = errors.New("session entry changed concurrently")

// SessionToken is a token handed back to a caller together with its expiry.
// Reused is set when the stored token was returned instead of a new one.
type SessionToken struct {
	Token     string
	ExpiresAt time.Time
	Reused    bool
}

// LoginAndGetToken authenticates and returns the live token for suiteID, minting
// one only when the stored entry is empty, expired or unusable.
func (s *AccountService) LoginAndGetToken(ctx context.Context, field domain.IdentifierField, value, password, suiteID string) (*SessionToken, error) {
	account, err := s.VerifyCredentials(ctx, field, value, password)
	if err != nil {
		return nil, err
	}
	if err := s.requireSuite(ctx, suiteID); err != nil {
		return nil, err
	}

	subject := account.Identifier(field)
	for attempt := 0; attempt < maxSwapAttempts; attempt++ {
		stored, err := s.sessions.GetSessionToken(ctx, account.ID, suiteID)
		if err != nil {
			return nil, fmt.Errorf("read session: %w", err)
		}
		if stored != "" {
			if claims, err := s.tokens.Verify(stored); err == nil {
				return &SessionToken{Token: stored, ExpiresAt: claims.ExpiresAtTime(), Reused: true}, nil
			}
		}

		issued, err := s.swapInNewToken(ctx, account.ID, subject, field, suiteID, stored)
		if errors.Is(err, errSessionContention) {
			s.logger.Debug("lost session swap, retrying", zap.String("account_id", account.ID), zap.String("suite_id", suiteID), zap.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		s.publishEvent(ctx, events.Event{
			Type:      events.EventSessionIssued,
			AccountID: account.ID,
			Payload:   events.SessionPayload{SuiteID: suiteID, ExpiresAt: issued.ExpiresAt},
		})
		return issued, nil
	}
	return nil, apperrors.NewInternalError(errSessionContention)
}

// VerifyAndGetToken checks a presented token against the stored one. Without
// renew the stored token is returned unchanged. With renew a new token is minted
// only when the stored one is inside the renewal window.
func (s *AccountService) VerifyAndGetToken(ctx context.Context, token string, renew bool) (*SessionToken, error) {
	claims, account, err := s.currentSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if !renew {
		return &SessionToken{Token: token, ExpiresAt: claims.ExpiresAtTime(), Reused: true}, nil
	}

	if claims.Remaining(s.tokens.Now()) > s.renewalWindow {
		return nil, ErrRenewalNotAllowed
	}

	issued, err := s.swapInNewToken(ctx, account.ID, claims.Subject, claims.IdentifierField, claims.SuiteID, token)
	if errors.Is(err, errSessionContention) {
		return s.winningSession(ctx, account.ID, claims.SuiteID)
	}
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSessionRenewed,
		AccountID: account.ID,
		Payload:   events.SessionPayload{SuiteID: claims.SuiteID, ExpiresAt: issued.ExpiresAt},
	})
	return issued, nil
}

// VerifySession authenticates a bearer token for protected routes.
func (s *AccountService) VerifySession(ctx context.Context, token string) (*auth.Claims, *domain.Account, error) {
	return s.currentSession(ctx, token)
}

// SignOut clears the suite entry for the token's subject, whichever token is
// currently stored there. Expired tokens are accepted; forged ones are not.
// Signing out twice succeeds.
func (s *AccountService) SignOut(ctx context.Context, token string) error {
	claims, err := s.tokens.Verify(token)
	if err != nil && !errors.Is(err, auth.ErrTokenExpired) {
		if _, decodeErr := s.tokens.DecodeUnverified(token); decodeErr != nil {
			return ErrBadToken
		}
		return ErrInvalidToken
	}

	account, err := s.accounts.GetByIdentifier(ctx, claims.IdentifierField, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load account: %w", err)
	}

	stored, err := s.sessions.GetSessionToken(ctx, account.ID, claims.SuiteID)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if stored == "" {
		return nil
	}
	if err := s.sessions.SetSessionToken(ctx, account.ID, claims.SuiteID, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.publishEvent(ctx, events.Event{
		Type:      events.EventSignedOut,
		AccountID: account.ID,
		Payload:   events.SessionPayload{SuiteID: claims.SuiteID},
	})
	return nil
}

// currentSession resolves a presented token to its verified claims and account.
// The store is authoritative: a token that is not the stored one is signed out.
func (s *AccountService) currentSession(ctx context.Context, token string) (*auth.Claims, *domain.Account, error) {
	unverified, err := s.tokens.DecodeUnverified(token)
	if err != nil {
		return nil, nil, ErrBadToken
	}
	if err := s.requireSuite(ctx, unverified.SuiteID); err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.GetByIdentifier(ctx, unverified.IdentifierField, unverified.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrSignedOut
		}
		return nil, nil, fmt.Errorf("load account: %w", err)
	}

	stored, err := s.sessions.GetSessionToken(ctx, account.ID, unverified.SuiteID)
	if err != nil {
		return nil, nil, fmt.Errorf("read session: %w", err)
	}
	if stored == "" || stored != token {
		return nil, nil, ErrSignedOut
	}

	claims, err := s.tokens.Verify(stored)
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return nil, nil, ErrTokenExpired
	case err != nil:
		return nil, nil, ErrInvalidToken
	}
	return claims, account, nil
}

// winningSession returns the token a concurrent writer stored, provided it is live.
func (s *AccountService) winningSession(ctx context.Context, accountID, suiteID string) (*SessionToken, error) {
	stored, err := s.sessions.GetSessionToken(ctx, accountID, suiteID)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if stored == "" {
		return nil, ErrSignedOut
	}
	claims, err := s.tokens.Verify(stored)
	if err != nil {
		return nil, ErrSignedOut
	}
	return &SessionToken{Token: stored, ExpiresAt: claims.ExpiresAtTime(), Reused: true}, nil
}

func (s *AccountService) swapInNewToken(ctx context.Context, accountID, subject string, field domain.IdentifierField, suiteID, previous string) (*SessionToken, error) {
	token, expiresAt, err := s.tokens.Issue(subject, field, suiteID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	swapped, err := s.sessions.SwapSessionToken(ctx, accountID, suiteID, previous, token)
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	if !swapped {
		return nil, errSessionContention
	}
	return &SessionToken{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) requireSuite(ctx context.Context, suiteID string) error {
	exists, err := s.suites.SuiteExists(ctx, suiteID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUnknownSuite
	}
	return nil
}
