// Package authapi talks to the auth service and owns the token side effects
// of logging in and out.
package authapi

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/sparkrunner/portal/internal/client"
	"github.com/sparkrunner/portal/internal/models"
	"github.com/sparkrunner/portal/internal/tokenstore"
)


// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration are the register form fields.
type Registration struct {
	Username string
	Email    string
	Password string
}

type registerRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     []string `json:"role"`
}

// LoginResponse is the auth service reply to a login.
type LoginResponse struct {
	Token string `json:"token"`
}

// API is the auth service adapter.
type API struct {
	client *client.Client
	tokens tokenstore.Store
}

// New creates an adapter over the auth service client.
func New(c *client.Client, tokens tokenstore.Store) *API {
	return &API{client: c, tokens: tokens}
}

// Login exchanges credentials for a token and persists the token before
// returning. A reply without a token leaves the stored token untouched.
func (a *API) Login(ctx context.Context, creds Credentials) (*LoginResponse, error) {
	var resp LoginResponse
	if err := a.client.Post(ctx, "/login", creds, &resp); err != nil {
		return nil, err
	}

	if resp.Token != "" {
		if err := a.tokens.Set(resp.Token); err != nil {
			return nil, fmt.Errorf("failed to store token: %w", err)
		}
	}

	log.Debug().Str("email", creds.Email).Bool("token", resp.Token != "").Msg("login succeeded")

	return &resp, nil
}

// Register creates an account with the default role. It does not log the
// new user in.
func (a *API) Register(ctx context.Context, reg Registration) (*models.UserSummary, error) {
	req := registerRequest{
		Username: reg.Username,
		Email:    reg.Email,
		Password: reg.Password,
		Role:     []string{models.RoleUser},
	}

	var summary models.UserSummary
	if err := a.client.Post(ctx, "/register", req, &summary); err != nil {
		return nil, err
	}

	log.Debug().Str("email", reg.Email).Str("id", summary.ID).Msg("registration succeeded")

	return &summary, nil
}

// Logout forgets the stored token. No request is sent.
func (a *API) Logout() error {
	return a.tokens.Remove()
}

// IsAuthenticated reports whether any token is stored. The token is not validated.
func (a *API) IsAuthenticated() bool {
	token, ok := a.tokens.Get()
	return ok && token != ""
}

// Token returns the stored token.
func (a *API) Token() (string, bool) {
	return a.tokens.Get()
}
