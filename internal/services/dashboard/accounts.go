package dashboard

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/benvon/toolhub/internal/apperrors"
	"github.com/benvon/toolhub/internal/database"
	logpkg "github.com/benvon/toolhub/internal/logger"
	"github.com/benvon/toolhub/internal/models"
	"github.com/benvon/toolhub/internal/telemetry"
)

// Account is the caller's account plus whether onboarding is complete.
type Account struct {
	User           *models.User `json:"user"`
	HasPreferences bool         `json:"hasPreferences"`
}

// EnsureUser returns the account for identity, creating it on first sight and
// refreshing profile fields the identity provider changed.
func (s *Service) EnsureUser(ctx context.Context, identity *models.Identity) (_ *models.User, err error) {
	ctx, span := telemetry.StartSpan(ctx, "dashboard.ensure_user")
	defer func() { telemetry.EndSpan(span, err) }()

	if identity == nil || identity.Subject == "" {
		return nil, &apperrors.AuthenticationError{Reason: "missing identity"}
	}

	user, err := s.users.GetByProviderID(ctx, identity.Subject)
	switch {
	case errors.Is(err, database.ErrNotFound):
		user = &models.User{
			ProviderID:     identity.Subject,
			PurchasedCoins: models.DefaultPurchasedCoins,
		}
		user.ApplyIdentity(*identity)
		if err := s.users.Create(ctx, user); err != nil {
			return nil, apperrors.Persistence("create user", err)
		}
		span.SetAttributes(attribute.Bool("user.created", true))
		s.logger.Info("user_provisioned",
			zap.String("user_id", logpkg.SanitizeUserID(user.ID.String())),
		)
		return user, nil
	case err != nil:
		return nil, apperrors.Persistence("get user", err)
	}

	if user.ApplyIdentity(*identity) {
		if err := s.users.Update(ctx, user); err != nil {
			return nil, apperrors.Persistence("update user", err)
		}
	}
	return user, nil
}

// Me provisions the account and reports whether preferences were saved.
func (s *Service) Me(ctx context.Context, identity *models.Identity) (*Account, error) {
	user, err := s.EnsureUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	_, err = s.prefs.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		return &Account{User: user, HasPreferences: true}, nil
	case errors.Is(err, database.ErrNotFound):
		return &Account{User: user}, nil
	default:
		return nil, apperrors.Persistence("get preferences", err)
	}
}
