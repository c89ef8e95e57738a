package commands

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/sparkrunner/portal/internal/models"
	"github.com/sparkrunner/portal/internal/profileapi"
)

type TripsCmd struct {
	Limit  int `help:"Number of trips to show" default:"20"`
	Offset int `help:"Number of trips to skip" default:"0"`
}

func (c *TripsCmd) Run(ctx context.Context, globals *Globals) error {
	a, err := newApp(globals)
	if err != nil {
		return err
	}

	if _, err := a.requireIdentity(); err != nil {
		return err
	}

	history, err := a.profile.GetUserRides(ctx, profileapi.RidesOptions{Limit: c.Limit, Offset: c.Offset})
	if err != nil {
		return apiError(err, "could not load trip history")
	}

	if len(history.Trips) == 0 {
		fmt.Fprintln(globals.out(), "No trips yet.")
		return nil
	}

	w := tabwriter.NewWriter(globals.out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tCOST\tMINUTES\tSCOOTER")
	for _, trip := range history.Trips {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", tripDate(trip), tripCost(trip), tripMinutes(trip), orDash(trip.Scooter))
	}
	return w.Flush()
}

func tripDate(t models.Trip) string {
	started, ok := t.StartedAt()
	if !ok {
		return orDash(t.StartTime)
	}
	return started.Local().Format("2006-01-02")
}

func tripCost(t models.Trip) string {
	cost, ok := t.CostValue()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f SEK", cost)
}

func tripMinutes(t models.Trip) string {
	minutes, ok := t.DurationMinutes()
	if !ok {
		return "-"
	}
	return strconv.Itoa(minutes)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
