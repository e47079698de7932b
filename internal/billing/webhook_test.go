package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/config"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// fakeRepo records subscription writes for webhook tests
type fakeRepo struct {
	upserted  []*models.Subscription
	activated []string
}

func (f *fakeRepo) SaveSession(ctx context.Context, s *models.Session) error { return nil }
func (f *fakeRepo) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeRepo) ListSessions(ctx context.Context, userID string, limit, offset int) ([]*models.Session, error) {
	return nil, nil
}
func (f *fakeRepo) ListSessionsByJobType(ctx context.Context, userID, jobType string) ([]*models.Session, error) {
	return nil, nil
}
func (f *fakeRepo) GetFieldLevels(ctx context.Context, userID string) ([]*models.FieldLevel, error) {
	return nil, nil
}
func (f *fakeRepo) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	f.upserted = append(f.upserted, sub)
	return nil
}
func (f *fakeRepo) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	return nil, nil
}
func (f *fakeRepo) ActivateSubscription(ctx context.Context, subscriptionID string) error {
	f.activated = append(f.activated, subscriptionID)
	return nil
}
func (f *fakeRepo) Ping(ctx context.Context) error { return nil }
func (f *fakeRepo) Close() error                   { return nil }

const testSecret = "whsec_test"

func newTestService(repo *fakeRepo) *Service {
	return NewService(config.BillingConfig{
		CheckoutURL:   "https://payments.example.com/v1/checkout/sessions",
		SecretKey:     "sk_test",
		PriceID:       "price_123",
		SiteURL:       "https://deepthink.example.com",
		WebhookSecret: testSecret,
	}, repo)
}

// sign builds a valid `t=<ts>,v1=<sig>` header for a payload
func sign(payload []byte, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(ts + "."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifySignature(t *testing.T) {
	svc := newTestService(&fakeRepo{})
	payload := []byte(`{"type":"checkout.session.completed"}`)
	now := time.Now()

	if err := svc.VerifySignature(payload, sign(payload, now), now); err != nil {
		t.Errorf("valid signature rejected: %v", err)
	}

	// Tampered payload
	if err := svc.VerifySignature([]byte(`{"type":"evil"}`), sign(payload, now), now); !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature for tampered payload, got %v", err)
	}

	// Garbage header
	if err := svc.VerifySignature(payload, "v1=deadbeef", now); !errors.Is(err, ErrBadSignature) {
		t.Errorf("expected ErrBadSignature for missing timestamp, got %v", err)
	}

	// Stale timestamp
	stale := now.Add(-time.Hour)
	if err := svc.VerifySignature(payload, sign(payload, stale), now); !errors.Is(err, ErrSignatureExpired) {
		t.Errorf("expected ErrSignatureExpired, got %v", err)
	}
}

func TestWebhookActivatesSubscription(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "client_reference_id": "user-123", "subscription": "sub_42"}}
	}`)

	if err := svc.HandleWebhook(context.Background(), payload, sign(payload, time.Now())); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}

	if len(repo.upserted) != 1 {
		t.Fatalf("expected 1 subscription write, got %d", len(repo.upserted))
	}
	sub := repo.upserted[0]
	if sub.UserID != "user-123" || sub.SubscriptionID != "sub_42" {
		t.Errorf("unexpected subscription row: %+v", sub)
	}
	if sub.Status != models.SubscriptionActive {
		t.Errorf("expected active status, got %s", sub.Status)
	}
}

func TestWebhookRejectsBadSignatureWithoutStateChange(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	payload := []byte(`{
		"type": "checkout.session.completed",
		"data": {"object": {"client_reference_id": "user-123", "subscription": "sub_42"}}
	}`)

	err := svc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	if err == nil {
		t.Fatal("expected signature error")
	}
	if len(repo.upserted) != 0 || len(repo.activated) != 0 {
		t.Error("failed signature must not change state")
	}
}

func TestWebhookIgnoresUnknownEvents(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	payload := []byte(`{"type": "invoice.created", "data": {"object": {"id": "in_1"}}}`)
	if err := svc.HandleWebhook(context.Background(), payload, sign(payload, time.Now())); err != nil {
		t.Fatalf("unknown events should be acknowledged: %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Error("unknown event must not write state")
	}
}

func TestWebhookRenewalUsesSubscriptionID(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	payload := []byte(`{"type": "customer.subscription.updated", "data": {"object": {"id": "sub_42"}}}`)
	if err := svc.HandleWebhook(context.Background(), payload, sign(payload, time.Now())); err != nil {
		t.Fatalf("HandleWebhook failed: %v", err)
	}
	if len(repo.activated) != 1 || repo.activated[0] != "sub_42" {
		t.Errorf("expected activation of sub_42, got %v", repo.activated)
	}
}
