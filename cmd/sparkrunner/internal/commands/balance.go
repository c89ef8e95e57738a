package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/sparkrunner/portal/internal/client"
	"github.com/sparkrunner/portal/internal/models"
)

type BalanceCmd struct{}

func (c *BalanceCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := newApp(globals)
	if err != nil {
		return err
	}

	id, err := a.requireIdentity()
	if err != nil {
		return err
	}

	balance, err := a.loadBalance(ctx, id.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(globals.out(), "Balance: %s\n", formatAmount(balance))
	return nil
}

// loadBalance treats a missing balance as zero; new users have none yet.
func (a *app) loadBalance(ctx context.Context, userID string) (float64, error) {
	balance, err := a.profile.GetUserBalance(ctx, userID)
	if errors.Is(err, client.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, apiError(err, "could not load balance")
	}
	return balanceValue(balance), nil
}

func balanceValue(b *models.Balance) float64 {
	if b == nil {
		return 0
	}
	return b.Balance
}
