package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/sparkrunner/portal/internal/models"
)

var ErrInvalidAmount = errors.New("amount must be greater than zero")

type TopupCmd struct {
	Amount        float64 `arg:"" help:"Amount to add"`
	PaymentMethod string  `help:"Payment method to charge" name:"payment-method"`
}

func (c *TopupCmd) Run(ctx context.Context, globals *Globals) error {
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}

	a, err := newApp(globals)
	if err != nil {
		return err
	}

	id, err := a.requireIdentity()
	if err != nil {
		return err
	}

	result, err := a.profile.FillupBalance(ctx, id.ID, models.FillupRequest{
		Amount:        c.Amount,
		PaymentMethod: c.PaymentMethod,
	})
	if err != nil {
		return apiError(err, "top up failed")
	}

	var balance float64
	if result != nil && result.Balance != nil {
		balance = *result.Balance
	} else if balance, err = a.loadBalance(ctx, id.ID); err != nil {
		return err
	}

	fmt.Fprintf(globals.out(), "Added %s.\n", formatAmount(c.Amount))
	if result != nil && result.TransactionID != "" {
		fmt.Fprintf(globals.out(), "Transaction: %s\n", result.TransactionID)
	}
	fmt.Fprintf(globals.out(), "Balance: %s\n", formatAmount(balance))
	return nil
}
