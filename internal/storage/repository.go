package storage

import (
	"context"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Repository defines the interface for history and billing persistence
type Repository interface {
	// Session history
	SaveSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.Session, error)
	ListSessionsByJobType(ctx context.Context, userID, jobType string) ([]*models.Session, error)

	// Field mastery
	GetFieldLevels(ctx context.Context, userID string) ([]*models.FieldLevel, error)

	// Subscriptions
	UpsertSubscription(ctx context.Context, sub *models.Subscription) error
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
	ActivateSubscription(ctx context.Context, subscriptionID string) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
