package commands

import (
	"flag"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/firewall"
	"github.com/nftblock/nftblock/internal/log"
)

func CreateClearCommand() *ClearCommand {
	gc := &ClearCommand{
		fs: flag.NewFlagSet("clear", flag.ExitOnError),
	}
	return gc
}

// ClearCommand removes all enforcement state (table, chains, sets, rules).
type ClearCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
}

func (g *ClearCommand) Name() string {
	return g.fs.Name()
}

func (g *ClearCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *ClearCommand) Run() error {
	backend, err := firewall.NewBackend(g.cfg)
	if err != nil {
		return err
	}

	log.Infof("Removing all blacklist enforcement state...")
	if err := backend.ClearAll(); err != nil {
		return err
	}

	log.Infof("Enforcement state cleared")
	return nil
}
