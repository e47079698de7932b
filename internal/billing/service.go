package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/config"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/storage"
)

// Common errors
var (
	ErrNotConfigured = errors.New("billing is not configured")
)

// Service drives the subscription checkout flow against a Stripe-style
// payment provider.
type Service struct {
	checkoutURL   string
	secretKey     string
	priceID       string
	siteURL       string
	webhookSecret string
	planName      string
	repo          storage.Repository
	httpClient    *http.Client
}

// NewService creates the billing service
func NewService(cfg config.BillingConfig, repo storage.Repository) *Service {
	return &Service{
		checkoutURL:   cfg.CheckoutURL,
		secretKey:     cfg.SecretKey,
		priceID:       cfg.PriceID,
		siteURL:       strings.TrimSuffix(cfg.SiteURL, "/"),
		webhookSecret: cfg.WebhookSecret,
		planName:      "Pro",
		repo:          repo,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// checkoutSession is the provider's response to a session create call
type checkoutSession struct {
	ID string `json:"id"`
}

// CreateCheckoutSession opens a provider checkout session for the user and
// seeds the subscription row so the webhook has something to activate.
func (s *Service) CreateCheckoutSession(ctx context.Context, user models.User) (*models.CheckoutSessionResponse, error) {
	if s.secretKey == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("mode", "subscription")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][price]", s.priceID)
	form.Set("line_items[0][quantity]", "1")
	form.Set("success_url", s.siteURL+"/#/subscribe/success")
	form.Set("cancel_url", s.siteURL+"/#/subscribe/"+s.planName)
	form.Set("client_reference_id", user.ID)
	form.Set("customer_email", user.Email)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.checkoutURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkout response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("checkout request failed: http %d", resp.StatusCode)
	}

	var session checkoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to parse checkout response: %w", err)
	}
	if session.ID == "" {
		return nil, errors.New("checkout response carries no session id")
	}

	sub := &models.Subscription{
		UserID:    user.ID,
		Status:    models.SubscriptionNew,
		PlanName:  s.planName,
		UpdatedAt: time.Now(),
	}
	if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to seed subscription row: %w", err)
	}

	slog.Info("checkout session created", "user", user.ID, "session", session.ID)
	return &models.CheckoutSessionResponse{SessionID: session.ID}, nil
}

// Subscription returns the user's billing row, nil when none exists yet
func (s *Service) Subscription(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repo.GetSubscription(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return sub, err
}
