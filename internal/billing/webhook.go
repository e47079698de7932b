package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Webhook errors. All of them map to a 400 at the edge; a failed signature
// must never change state.
var (
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrSignatureExpired = errors.New("webhook timestamp outside tolerance")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// signatureTolerance bounds how old a signed webhook may be
const signatureTolerance = 5 * time.Minute

// webhookEvent mirrors the provider's event envelope
type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID                string `json:"id"`
			ClientReferenceID string `json:"client_reference_id"`
			Subscription      string `json:"subscription"`
		} `json:"object"`
	} `json:"data"`
}

// VerifySignature checks a `t=<ts>,v1=<sig>` header against the payload.
// The signed input is "<ts>.<payload>" keyed with the webhook secret.
func (s *Service) VerifySignature(payload []byte, header string, now time.Time) error {
	var ts string
	var sigs []string

	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrBadSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrBadSignature
	}
	signedAt := time.Unix(unix, 0)
	if now.Sub(signedAt) > signatureTolerance || signedAt.Sub(now) > signatureTolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range sigs {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			return nil
		}
	}
	return ErrBadSignature
}

// HandleWebhook verifies and applies one provider event. Only a verified
// checkout.session.completed flips the subscription row to active.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if err := s.VerifySignature(payload, signatureHeader, time.Now()); err != nil {
		slog.Warn("webhook rejected", "error", err)
		return err
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	switch event.Type {
	case "checkout.session.completed":
		userID := event.Data.Object.ClientReferenceID
		subscriptionID := event.Data.Object.Subscription
		if userID == "" || subscriptionID == "" {
			return fmt.Errorf("%w: missing user or subscription id", ErrMalformedEvent)
		}

		sub := &models.Subscription{
			UserID:         userID,
			SubscriptionID: subscriptionID,
			Status:         models.SubscriptionActive,
			PlanName:       s.planName,
			UpdatedAt:      time.Now(),
		}
		if err := s.repo.UpsertSubscription(ctx, sub); err != nil {
			return fmt.Errorf("failed to activate subscription: %w", err)
		}
		slog.Info("subscription activated", "user", userID, "subscription", subscriptionID)
		return nil

	case "customer.subscription.updated":
		// Renewal events carry no client reference, only the provider's
		// subscription ID.
		subscriptionID := event.Data.Object.ID
		if subscriptionID == "" {
			return fmt.Errorf("%w: missing subscription id", ErrMalformedEvent)
		}
		if err := s.repo.ActivateSubscription(ctx, subscriptionID); err != nil {
			return fmt.Errorf("failed to refresh subscription: %w", err)
		}
		return nil

	default:
		slog.Debug("ignoring webhook event", "type", event.Type)
		return nil
	}
}
