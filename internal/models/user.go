package models

import (
	"time"
)

// User is the authenticated account profile
type User struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	ProfilePictureURL string   `json:"profilePictureUrl"`
	Hobbies           []string `json:"hobbies"`
	Instagram         string   `json:"instagram,omitempty"`
	Twitter           string   `json:"twitter,omitempty"`
}

// SubscriptionStatus represents the billing state of a subscription row
type SubscriptionStatus string

const (
	SubscriptionNew    SubscriptionStatus = "new"
	SubscriptionActive SubscriptionStatus = "active"
)

// Subscription is the per-user billing row flipped to active by the
// signature-verified payment webhook.
type Subscription struct {
	UserID           string             `json:"user_id"`
	CustomerID       string             `json:"customer_id,omitempty"`
	SubscriptionID   string             `json:"subscription_id,omitempty"`
	Status           SubscriptionStatus `json:"status"`
	PlanName         string             `json:"plan_name"`
	CurrentPeriodEnd *time.Time         `json:"current_period_end,omitempty"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// LoginRequest carries the credential pair
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the bearer token and profile on success
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// CheckoutSessionResponse returns the payment redirect session identifier
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
}
