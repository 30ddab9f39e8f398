package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ReWear/internal/cli/service"
	"ReWear/internal/config"
)

type queueCmd struct{}

func (queueCmd) AdminOnly() bool     { return true }
func (queueCmd) Name() string        { return "queue" }
func (queueCmd) Description() string { return "Moderation queue and item stats" }
func (queueCmd) Usage() string       { return "queue [pending|approved|all]" }

func (queueCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) > 1 {
		return ErrUsage
	}
	status := ""
	if len(args) == 1 {
		status = args[0]
	}
	c := service.NewClient(cfg)
	st, err := c.AdminStats()
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Items: %d (pending %d, approved %d, rejected %d, removed %d)  Users: %d\n",
		st.TotalItems, st.PendingItems, st.ApprovedItems, st.RejectedItems, st.RemovedItems, st.TotalUsers)
	items, err := c.Queue(status)
	if err != nil {
		return err
	}
	printItems(items)
	return nil
}

type moderateCmd struct{}

func (moderateCmd) AdminOnly() bool     { return true }
func (moderateCmd) Name() string        { return "moderate" }
func (moderateCmd) Description() string { return "Approve, reject, flag or delete a listing" }
func (moderateCmd) Usage() string {
	return "moderate <approve|reject|flag|delete> [-confirm] <item-id> [notes]"
}

func (moderateCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	action := strings.ToLower(args[0])
	fs := newFlagSet("moderate")
	confirm := fs.Bool("confirm", false, "confirm permanent deletion")
	if err := fs.Parse(args[1:]); err != nil || fs.NArg() < 1 {
		return ErrUsage
	}
	rest := fs.Args()
	c := service.NewClient(cfg)

	if action == "delete" {
		if err := c.DeleteListing(rest[0], *confirm); err != nil {
			return err
		}
		fmt.Fprintf(Out, "Item %s deleted\n", rest[0])
		return nil
	}
	it, err := c.Moderate(rest[0], action, strings.Join(rest[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "Item %s: %s\n", it.ID, itemStatus(*it))
	return nil
}

type pointsCmd struct{}

func (pointsCmd) AdminOnly() bool     { return true }
func (pointsCmd) Name() string        { return "points" }
func (pointsCmd) Description() string { return "Adjust a user's points balance" }
func (pointsCmd) Usage() string       { return "points <user-id> <delta> [note]" }

func (pointsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) < 2 {
		return ErrUsage
	}
	delta, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return ErrUsage
	}
	balance, err := service.NewClient(cfg).AdjustPoints(args[0], delta, strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "User %s balance: %d\n", args[0], balance)
	return nil
}

type promoteCmd struct{}

func (promoteCmd) AdminOnly() bool     { return true }
func (promoteCmd) Name() string        { return "promote" }
func (promoteCmd) Description() string { return "Grant admin role to a user" }
func (promoteCmd) Usage() string       { return "promote <user-id>" }

func (promoteCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	u, err := service.NewClient(cfg).Promote(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(Out, "%s is now %s\n", u.Email, u.Role)
	return nil
}

func init() {
	RegisterCmd(queueCmd{})
	RegisterCmd(moderateCmd{})
	RegisterCmd(pointsCmd{})
	RegisterCmd(promoteCmd{})
}
