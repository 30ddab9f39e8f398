package commands

import (
	"context"

	"ReWear/internal/cli/bootstrap"
	"ReWear/internal/cli/service"
	"ReWear/internal/config"
)

type browseCmd struct{}

func (browseCmd) Name() string        { return "browse" }
func (browseCmd) Description() string { return "Search available items on the server" }
func (browseCmd) Usage() string {
	return "browse [-category c] [-size s] [-condition c] [-sort key] [text]"
}

func (browseCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	q, err := parseQuery("browse", args)
	if err != nil {
		return err
	}
	items, err := service.NewClient(cfg).Browse(q)
	if err != nil {
		return err
	}
	printItems(items)
	return nil
}

type searchCmd struct{}

func (searchCmd) Name() string        { return "search" }
func (searchCmd) Description() string { return "Search the local catalog copy (offline, run sync first)" }
func (searchCmd) Usage() string {
	return "search [-category c] [-size s] [-condition c] [-sort key] [text]"
}

func (searchCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	q, err := parseQuery("search", args)
	if err != nil {
		return err
	}
	r, _, done, err := bootstrap.OpenCatalogRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	defer done()
	items, err := service.Search(r, q)
	if err != nil {
		return err
	}
	printItems(items)
	return nil
}

type itemCmd struct{}

func (itemCmd) Name() string        { return "item" }
func (itemCmd) Description() string { return "Show item details" }
func (itemCmd) Usage() string       { return "item <item-id>" }

func (itemCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	it, err := service.NewClient(cfg).Item(args[0])
	if err != nil {
		return err
	}
	printItem(it)
	return nil
}

func init() {
	RegisterCmd(browseCmd{})
	RegisterCmd(searchCmd{})
	RegisterCmd(itemCmd{})
}
