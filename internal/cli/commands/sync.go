package commands

import (
	"context"
	"fmt"

	"ReWear/internal/cli/bootstrap"
	"ReWear/internal/cli/service"
	"ReWear/internal/config"
)

type syncCmd struct{}

func (syncCmd) Name() string        { return "sync" }
func (syncCmd) Description() string { return "Pull catalog changes into the local copy" }
func (syncCmd) Usage() string       { return "sync [-full]" }

func (syncCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	fs := newFlagSet("sync")
	full := fs.Bool("full", false, "drop the local copy and download everything")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return ErrUsage
	}
	r, login, done, err := bootstrap.OpenCatalogRepo(cfg.ClientDBPath)
	if err != nil {
		return err
	}
	defer done()

	res, err := service.Sync(service.NewClient(cfg), r, login, *full)
	if err != nil {
		return err
	}
	mode := "incremental"
	if res.Full {
		mode = "full"
	}
	fmt.Fprintf(Out, "Sync (%s): %d updated, %d removed, server time %s\n", mode, res.Upserted, res.Removed, res.ServerTime)
	return nil
}

func init() { RegisterCmd(syncCmd{}) }
