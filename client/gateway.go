package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Kind selects which generation endpoint a request targets.
type Kind string

// Generation kinds and their fixed per-request token costs.
const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Cost returns the token price of one request of this kind.
func (k Kind) Cost() int {
	if k == KindVideo {
		return 3
	}
	return 1
}

// Request describes one user-initiated generation. Demo is honored for text
// requests only and bypasses the auth and affordability gates.
type Request struct {
	Kind Kind
	Demo bool

	BusinessName   string
	BusinessType   string
	TargetAudience string
	Platforms      []string
	Platform       string
	Tone           string
	Language       string
	NumPosts       int

	Prompt string
	Style  string
}

// Post is one generated social-media post.
type Post struct {
	Day        int      `json:"day"`
	Platform   string   `json:"platform"`
	TextAR     string   `json:"text_ar"`
	TextEN     string   `json:"text_en"`
	HashtagsAR []string `json:"hashtags_ar"`
	HashtagsEN []string `json:"hashtags_en"`
}

// Image is one generated visual, delivered inline.
type Image struct {
	Data     string `json:"image_data"`
	MIMEType string `json:"mime_type"`
	AltText  string `json:"alt_text"`
	URL      string `json:"image_url"`
}

// Slide is one segment of a generated reel script.
type Slide struct {
	Slide           int    `json:"slide"`
	TextAR          string `json:"text_ar"`
	TextEN          string `json:"text_en"`
	VisualKeyword   string `json:"visual_keyword"`
	DurationSeconds int    `json:"duration_seconds"`
	VideoURL        string `json:"video_url"`
}

// Result carries the kind-specific payload of a successful generation.
// TokensRemaining is nil for demo responses, which never touch the balance.
type Result struct {
	Kind            Kind
	Posts           []Post
	Mode            string
	Image           *Image
	Slides          []Slide
	TotalDuration   int
	Platform        string
	TokensRemaining *int
}

// HistoryEntry is one past generation as reported by the usage endpoint.
type HistoryEntry struct {
	Type           string    `json:"type"`
	Platform       string    `json:"platform"`
	BusinessName   string    `json:"business_name"`
	TokensConsumed int       `json:"tokens_consumed"`
	CreatedAt      time.Time `json:"created_at"`
}

// PaymentRecord is one past checkout as reported by the usage endpoint.
type PaymentRecord struct {
	Plan      string    `json:"plan"`
	AmountSAR float64   `json:"amount_sar"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Usage is the account summary returned by History.
type Usage struct {
	Plan            string          `json:"plan"`
	TokensTotal     int             `json:"tokens_total"`
	TokensUsed      int             `json:"tokens_used"`
	TokensRemaining int             `json:"tokens_remaining"`
	History         []HistoryEntry  `json:"history"`
	Payments        []PaymentRecord `json:"payments"`
}

// Checkout is the hosted-payment handoff returned by the payment endpoint.
type Checkout struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
	IntentID    string `json:"intent_id"`
	Plan        string `json:"plan"`
	AmountSAR   int64  `json:"amount_sar"`
	Currency    string `json:"currency"`
}

// Gateway mediates every generation request against the session's gating
// rules: local validation, auth, affordability, then exactly one HTTP call.
// Failed requests are never retried automatically; the cost is real, so a
// retry is the user's decision.
type Gateway struct {
	session *SessionManager
}

// NewGateway constructs a gateway over an existing session manager.
func NewGateway(session *SessionManager) *Gateway {
	if session == nil {
		panic("client: gateway requires a session manager")
	}
	return &Gateway{session: session}
}

// Generate gates and dispatches one generation request. Gates run in order:
// auth, affordability, local field validation, then token freshness. Demo
// text requests skip every gate except validation.
func (g *Gateway) Generate(ctx context.Context, req Request) (Result, error) {
	demo := req.Demo && req.Kind == KindText
	if !demo {
		if !g.session.Current().Authenticated() {
			return Result{}, ErrAuthRequired
		}
		if !g.session.CanAfford(req.Kind.Cost()) {
			return Result{}, ErrInsufficientTokens
		}
	}

	if err := validateRequest(req); err != nil {
		return Result{}, err
	}

	if !demo && !g.session.EnsureValid(ctx) {
		return Result{}, ErrAuthExpired
	}

	bearer := ""
	if !demo {
		bearer = g.session.Current().AccessToken
	}

	switch req.Kind {
	case KindText:
		return g.generateText(ctx, req, bearer, demo)
	case KindImage:
		return g.generateImage(ctx, req, bearer)
	default:
		return g.generateVideo(ctx, req, bearer)
	}
}

// History fetches the account's plan summary and generation history, syncing
// the local balance from the response.
func (g *Gateway) History(ctx context.Context) (Usage, error) {
	if !g.session.Current().Authenticated() {
		return Usage{}, ErrAuthRequired
	}
	if !g.session.EnsureValid(ctx) {
		return Usage{}, ErrAuthExpired
	}

	var usage Usage
	status, apiErr, err := g.session.doJSON(ctx, http.MethodGet, "/api/usage", g.session.Current().AccessToken, nil, &usage)
	if err != nil {
		return Usage{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := g.checkStatus(status, apiErr); err != nil {
		return Usage{}, err
	}

	g.session.applyBalance(usage.TokensRemaining)
	return usage, nil
}

// Checkout opens a hosted payment session for the given plan.
func (g *Gateway) Checkout(ctx context.Context, plan string) (Checkout, error) {
	if !g.session.Current().Authenticated() {
		return Checkout{}, ErrAuthRequired
	}
	if !g.session.EnsureValid(ctx) {
		return Checkout{}, ErrAuthExpired
	}

	body := map[string]string{"plan": plan}

	var checkout Checkout
	status, apiErr, err := g.session.doJSON(ctx, http.MethodPost, "/api/payment", g.session.Current().AccessToken, body, &checkout)
	if err != nil {
		return Checkout{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if status == http.StatusBadRequest {
		return Checkout{}, fmt.Errorf("%w: %s", ErrInvalidRequest, apiErr)
	}
	if err := g.checkStatus(status, apiErr); err != nil {
		return Checkout{}, err
	}

	return checkout, nil
}

func (g *Gateway) generateText(ctx context.Context, req Request, bearer string, demo bool) (Result, error) {
	body := map[string]any{
		"business_name":   req.BusinessName,
		"business_type":   req.BusinessType,
		"target_audience": req.TargetAudience,
		"platforms":       req.Platforms,
		"tone":            req.Tone,
		"language":        req.Language,
		"num_posts":       req.NumPosts,
	}
	if demo {
		body["mode"] = "demo"
	}

	var payload struct {
		Posts           []Post `json:"posts"`
		Mode            string `json:"mode"`
		TokensRemaining *int   `json:"tokens_remaining"`
	}

	status, apiErr, err := g.session.doJSON(ctx, http.MethodPost, "/api/generate", bearer, body, &payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := g.checkStatus(status, apiErr); err != nil {
		return Result{}, err
	}

	if payload.TokensRemaining != nil {
		g.session.applyBalance(*payload.TokensRemaining)
	}

	return Result{
		Kind:            KindText,
		Posts:           payload.Posts,
		Mode:            payload.Mode,
		TokensRemaining: payload.TokensRemaining,
	}, nil
}

func (g *Gateway) generateImage(ctx context.Context, req Request, bearer string) (Result, error) {
	body := map[string]any{
		"prompt":        req.Prompt,
		"platform":      req.Platform,
		"business_name": req.BusinessName,
		"style":         req.Style,
		"language":      req.Language,
	}

	var payload struct {
		Image
		TokensRemaining int `json:"tokens_remaining"`
	}

	status, apiErr, err := g.session.doJSON(ctx, http.MethodPost, "/api/image", bearer, body, &payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := g.checkStatus(status, apiErr); err != nil {
		return Result{}, err
	}

	g.session.applyBalance(payload.TokensRemaining)

	image := payload.Image
	remaining := payload.TokensRemaining
	return Result{
		Kind:            KindImage,
		Image:           &image,
		TokensRemaining: &remaining,
	}, nil
}

func (g *Gateway) generateVideo(ctx context.Context, req Request, bearer string) (Result, error) {
	body := map[string]any{
		"business_name":   req.BusinessName,
		"business_type":   req.BusinessType,
		"target_audience": req.TargetAudience,
		"platform":        req.Platform,
		"tone":            req.Tone,
		"language":        req.Language,
	}

	var payload struct {
		Slides          []Slide `json:"slides"`
		TotalDuration   int     `json:"total_duration"`
		Platform        string  `json:"platform"`
		TokensRemaining int     `json:"tokens_remaining"`
	}

	status, apiErr, err := g.session.doJSON(ctx, http.MethodPost, "/api/video", bearer, body, &payload)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	if err := g.checkStatus(status, apiErr); err != nil {
		return Result{}, err
	}

	g.session.applyBalance(payload.TokensRemaining)

	remaining := payload.TokensRemaining
	return Result{
		Kind:            KindVideo,
		Slides:          payload.Slides,
		TotalDuration:   payload.TotalDuration,
		Platform:        payload.Platform,
		TokensRemaining: &remaining,
	}, nil
}

// checkStatus maps a non-2xx response to the failure taxonomy. A 401 on the
// privileged call itself is the second-chance trigger: the session is
// invalidated so the caller re-authenticates instead of retrying blindly.
func (g *Gateway) checkStatus(status int, apiErr string) error {
	switch {
	case status >= http.StatusOK && status < http.StatusMultipleChoices:
		return nil
	case status == http.StatusUnauthorized:
		g.session.invalidate()
		return ErrAuthExpired
	case status == http.StatusPaymentRequired:
		return fmt.Errorf("%w: %s", ErrInsufficientTokens, apiErr)
	default:
		return fmt.Errorf("%w: status %d %s", ErrBackend, status, apiErr)
	}
}

func validateRequest(req Request) error {
	switch req.Kind {
	case KindText:
		if len(req.Platforms) == 0 {
			return fmt.Errorf("%w: select at least one platform", ErrInvalidRequest)
		}
	case KindImage:
		if req.Demo {
			return fmt.Errorf("%w: demo mode only supports text generation", ErrInvalidRequest)
		}
		if req.Prompt == "" {
			return fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
		}
	case KindVideo:
		if req.Demo {
			return fmt.Errorf("%w: demo mode only supports text generation", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown generation kind %q", ErrInvalidRequest, req.Kind)
	}

	return nil
}
