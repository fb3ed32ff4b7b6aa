package models

import "time"

// User represents an account within the Postir platform.
type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Plan identifiers. Starter and pro are purchased; every new account starts free.
const (
	PlanFree    = "free"
	PlanStarter = "starter"
	PlanPro     = "pro"
)

// Token cost per generation kind.
const (
	CostText  = 1
	CostImage = 1
	CostVideo = 3
)

// FreeSignupTokens is the balance granted to a freshly created profile.
const FreeSignupTokens = 3

// Profile carries a user's plan and token accounting. A profile row is
// created alongside the user row at signup.
type Profile struct {
	UserID        string
	Email         string
	Plan          string
	TokensTotal   int
	TokensUsed    int
	PlanStartedAt *time.Time
	PlanExpiresAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TokensRemaining returns the spendable balance, clamped at zero.
func (p Profile) TokensRemaining() int {
	if r := p.TokensTotal - p.TokensUsed; r > 0 {
		return r
	}
	return 0
}

// CanAfford reports whether the profile may spend cost tokens. Pro plans are
// unmetered regardless of the recorded balance.
func (p Profile) CanAfford(cost int) bool {
	if p.Plan == PlanPro {
		return true
	}
	return p.TokensRemaining() >= cost
}

// Generation kinds recorded in the history log.
const (
	GenerationText  = "text"
	GenerationImage = "image"
	GenerationVideo = "video"
)

// Generation records a single billed content generation.
type Generation struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	Type           string    `json:"type"`
	Platform       string    `json:"platform,omitempty"`
	BusinessName   string    `json:"business_name,omitempty"`
	PromptSummary  string    `json:"prompt_summary,omitempty"`
	TokensConsumed int       `json:"tokens_consumed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Payment statuses. A checkout starts pending; confirmation arrives out of
// band from the processor.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Payment records a checkout initiated for a plan purchase.
type Payment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Plan      string    `json:"plan"`
	AmountSAR float64   `json:"amount_sar"`
	Status    string    `json:"status"`
	IntentID  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"access_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshToken     string    `json:"refresh_token"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}
