package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/deepthink-labs/deepthink-engine/internal/billing"
)

// maxWebhookBody bounds payment provider callback payloads
const maxWebhookBody = 1 << 20

// Billing handlers

func (s *Server) handleCreateCheckout(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	resp, err := s.billing.CreateCheckoutSession(r.Context(), *user)
	if err != nil {
		if errors.Is(err, billing.ErrNotConfigured) {
			respondError(w, http.StatusServiceUnavailable, "billing_unavailable", "billing is not configured")
			return
		}
		slog.Error("failed to create checkout session", "error", err)
		respondError(w, http.StatusBadGateway, "checkout_failed", "failed to create checkout session")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	sub, err := s.billing.Subscription(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to get subscription", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get subscription")
		return
	}
	if sub == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"subscription": nil,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"subscription": sub,
	})
}

// handleBillingWebhook is the payment provider callback. It is public: the
// HMAC signature header is the authentication.
func (s *Server) handleBillingWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		respondError(w, http.StatusBadRequest, "missing_signature", "signature header is required")
		return
	}

	if err := s.billing.HandleWebhook(r.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, billing.ErrBadSignature), errors.Is(err, billing.ErrSignatureExpired):
			respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
		case errors.Is(err, billing.ErrMalformedEvent):
			respondError(w, http.StatusBadRequest, "invalid_request", "malformed event payload")
		default:
			slog.Error("failed to process billing webhook", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to process webhook")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"received": "true",
	})
}
