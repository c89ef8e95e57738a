// Package profileapi talks to the scooter service about the current user's
// balance, top ups and trips.
package profileapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sparkrunner/portal/internal/client"
	"github.com/sparkrunner/portal/internal/models"
)

// RidesOptions pages the trip history. Zero values are left out of the query.
type RidesOptions struct {
	Limit  int
	Offset int
}

func (o RidesOptions) query() url.Values {
	q := url.Values{}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	return q
}

// API is the scooter service adapter. The user is identified by the bearer
// token the client attaches.
type API struct {
	client *client.Client
}

func New(c *client.Client) *API {
	return &API{client: c}
}

func userPath(userID string, rest string) string {
	return "/users/" + url.PathEscape(userID) + rest
}

// GetUserBalance fetches the balance of userID.
func (a *API) GetUserBalance(ctx context.Context, userID string) (*models.Balance, error) {
	var balance models.Balance
	if err := a.client.Get(ctx, userPath(userID, "/balance"), nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

// FillupBalance tops up the balance of userID. The amount is sent as given.
func (a *API) FillupBalance(ctx context.Context, userID string, req models.FillupRequest) (*models.FillupResult, error) {
	var result models.FillupResult
	if err := a.client.Post(ctx, userPath(userID, "/fillup"), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUserRides lists the trips of the logged in user.
func (a *API) GetUserRides(ctx context.Context, opts RidesOptions) (*models.TripHistory, error) {
	var history models.TripHistory
	if err := a.client.Get(ctx, "/rent/history", opts.query(), &history); err != nil {
		return nil, err
	}
	if history.Trips == nil {
		history.Trips = []models.Trip{}
	}
	return &history, nil
}

// GetUserProfile fetches the profile of userID.
func (a *API) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := a.client.Get(ctx, userPath(userID, ""), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
