package commands

import (
	"context"
	"fmt"
	"strings"

	"ReWear/internal/cli/service"
	"ReWear/internal/config"
)

type redeemCmd struct{}

func (redeemCmd) Name() string        { return "redeem" }
func (redeemCmd) Description() string { return "Redeem an item for points" }
func (redeemCmd) Usage() string       { return "redeem <item-id>" }

func (redeemCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	res, err := service.NewClient(cfg).Redeem(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Redeemed %q for %d points. Balance: %d\n", res.Item.Title, res.Item.Points, res.Balance)
	return nil
}

type swapCmd struct{}

func (swapCmd) Name() string        { return "swap" }
func (swapCmd) Description() string { return "Request a swap with the item owner" }
func (swapCmd) Usage() string       { return "swap [-offer <my-item-id>] <item-id> [message]" }

func (swapCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("swap")
	offer := fs.String("offer", "", "your item offered in exchange")
	if err := fs.Parse(args); err != nil || fs.NArg() < 1 {
		return ErrUsage
	}
	rest := fs.Args()
	rec, err := service.NewClient(cfg).RequestSwap(rest[0], strings.Join(rest[1:], " "), *offer)
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Swap request %s sent (%s)\n", rec.ID, rec.Status)
	return nil
}

type respondCmd struct{}

func (respondCmd) Name() string        { return "respond" }
func (respondCmd) Description() string { return "Accept, decline, cancel or complete a swap" }
func (respondCmd) Usage() string       { return "respond <swap-id> <accept|decline|cancel|complete>" }

func (respondCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	rec, err := service.NewClient(cfg).RespondSwap(args[0], strings.ToLower(args[1]))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Swap %s is now %s\n", rec.ID, rec.Status)
	return nil
}

type dashboardCmd struct{}

func (dashboardCmd) Name() string        { return "dashboard" }
func (dashboardCmd) Description() string { return "Show your listings, swaps and points history" }
func (dashboardCmd) Usage() string       { return "dashboard" }

func (dashboardCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	d, err := service.NewClient(cfg).Dashboard()
	if err != nil {
		return err
	}
	if d.User != nil {
		fmt.Fprintf(Out, "%s <%s>\n", d.User.Name, d.User.Email)
	}
	st := d.Stats
	fmt.Fprintf(Out, "Points: %d  Listed: %d  Available: %d  Exchanged: %d\n",
		st.Points, st.Listed, st.Available, st.Exchanged)
	fmt.Fprintln(Out)
	fmt.Fprintln(Out, "My listings")
	printItems(d.Listings)
	fmt.Fprintln(Out)
	printSwaps("Incoming requests", d.Incoming)
	printSwaps("Outgoing requests", d.Outgoing)
	if len(d.Ledger) > 0 {
		fmt.Fprintln(Out)
		fmt.Fprintln(Out, "Points history")
		for _, e := range d.Ledger {
			fmt.Fprintf(Out, "  %s  %+d  -> %d  %s %s\n",
				e.CreatedAt.Format("2006-01-02 15:04"), e.Change, e.BalanceAfter, e.Reason, e.Note)
		}
	}
	return nil
}

func init() {
	RegisterCmd(redeemCmd{})
	RegisterCmd(swapCmd{})
	RegisterCmd(respondCmd{})
	RegisterCmd(dashboardCmd{})
}
