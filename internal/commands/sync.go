package commands

import (
	"flag"
	"fmt"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
	"github.com/nftblock/nftblock/internal/service"
)

func CreateSyncCommand() *SyncCommand {
	gc := &SyncCommand{
		fs: flag.NewFlagSet("sync", flag.ExitOnError),
	}

	gc.fs.BoolVar(&gc.DryRun, "dry-run", false, "Download and classify lists without touching the firewall")

	return gc
}

// SyncCommand runs one blacklist synchronization pass.
type SyncCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config

	DryRun bool
}

func (g *SyncCommand) Name() string {
	return g.fs.Name()
}

func (g *SyncCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	// A pass with nothing to fetch is an operator error, not a silent no-op.
	if len(g.cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured, nothing to sync")
	}

	return nil
}

func (g *SyncCommand) Run() error {
	syncService, err := service.New(g.cfg)
	if err != nil {
		return err
	}

	if g.DryRun {
		stats := syncService.DryRun()
		for _, src := range stats.Sources {
			if src.OK {
				log.Infof("Source \"%s\": %d IPv4, %d IPv6, %d invalid", src.Name, src.IPv4, src.IPv6, src.Invalid)
			} else {
				log.Errorf("Source \"%s\": %s", src.Name, src.Error)
			}
		}
		log.Infof("Dry run: %d IPv4 and %d IPv6 entries would be applied", stats.IPv4Total, stats.IPv6Total)
		return nil
	}

	// Per-source and per-family failures are logged inside the pass; only
	// topology failures surface here and fail the command.
	return syncService.SyncOnce()
}
