package commands

import (
	"flag"
	"fmt"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/firewall"
)

func CreateShowCommand() *ShowCommand {
	gc := &ShowCommand{
		fs: flag.NewFlagSet("show", flag.ExitOnError),
	}

	gc.fs.StringVar(&gc.Family, "family", "", "Only show one family: v4 or v6")

	return gc
}

// ShowCommand prints the current contents of the enforcement sets to stdout.
type ShowCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config

	Family string
}

func (g *ShowCommand) Name() string {
	return g.fs.Name()
}

func (g *ShowCommand) Init(args []string, ctx *AppContext) error {
	if err := g.fs.Parse(args); err != nil {
		return err
	}

	switch g.Family {
	case "", "v4", "v6":
	default:
		return fmt.Errorf("invalid -family value %q, must be v4 or v6", g.Family)
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		g.cfg = cfg
	}

	return nil
}

func (g *ShowCommand) Run() error {
	backend, err := firewall.NewBackend(g.cfg)
	if err != nil {
		return err
	}

	families := []config.Family{config.FamilyIPv4, config.FamilyIPv6}
	switch g.Family {
	case "v4":
		families = []config.Family{config.FamilyIPv4}
	case "v6":
		families = []config.Family{config.FamilyIPv6}
	}

	for _, family := range families {
		elements, err := backend.ListSet(family)
		if err != nil {
			return fmt.Errorf("failed to list %s set: %v", family, err)
		}

		fmt.Printf("# %s (%d entries)\n", firewall.SetName(family), len(elements))
		for _, element := range elements {
			fmt.Println(element)
		}
	}

	return nil
}
