package commands

import (
	"flag"
	"fmt"
	"net"
	"os/exec"

	"github.com/vishvananda/netlink"

	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/firewall"
	"github.com/nftblock/nftblock/internal/log"
)

func CreateSelfCheckCommand() *SelfCheckCommand {
	gc := &SelfCheckCommand{
		fs: flag.NewFlagSet("self-check", flag.ExitOnError),
	}
	return gc
}

// SelfCheckCommand prints the effective configuration and verifies the
// enforcement prerequisites: control-plane binaries, topology objects and
// host interfaces.
type SelfCheckCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config
}

func (g *SelfCheckCommand) Name() string {
	return g.fs.Name()
}

func (g *SelfCheckCommand) Init(args []string, ctx *AppContext) error {
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

func (g *SelfCheckCommand) Run() error {
	log.Infof("Running self-check...")

	log.Infof("---------------- Configuration START -----------------")
	if cfg, err := g.cfg.SerializeConfig(); err != nil {
		log.Errorf("Failed to serialize config: %v", err)
		return err
	} else {
		fmt.Print(cfg.String())
	}
	log.Infof("----------------- Configuration END ------------------")

	hasFailures := false

	if !g.checkBinaries() {
		hasFailures = true
	}
	if !g.checkTopology() {
		hasFailures = true
	}
	g.printInterfaces()

	if hasFailures {
		log.Errorf("Self-check completed with failures")
		return fmt.Errorf("self-check failed")
	}

	log.Infof("Self-check completed successfully")
	return nil
}

func (g *SelfCheckCommand) checkBinaries() bool {
	binaries := []string{"nft"}
	if g.cfg.General.Backend == config.BackendIptables {
		binaries = []string{"ipset", "iptables"}
	}

	ok := true
	for _, binary := range binaries {
		if path, err := exec.LookPath(binary); err != nil {
			log.Errorf("[binary] %s: not found in PATH", binary)
			ok = false
		} else {
			log.Infof("[binary] %s: %s", binary, path)
		}
	}
	return ok
}

func (g *SelfCheckCommand) checkTopology() bool {
	backend, err := firewall.NewBackend(g.cfg)
	if err != nil {
		log.Errorf("[topology] failed to create backend: %v", err)
		return false
	}

	ok := true
	for _, result := range backend.Check() {
		if result.OK {
			log.Infof("[topology] %s: %s", result.Name, result.Detail)
		} else {
			log.Errorf("[topology] %s: %s", result.Name, result.Detail)
			ok = false
		}
	}
	return ok
}

func (g *SelfCheckCommand) printInterfaces() {
	links, err := netlink.LinkList()
	if err != nil {
		log.Warnf("[interfaces] failed to list host interfaces: %v", err)
		return
	}

	for _, link := range links {
		attrs := link.Attrs()
		state := "down"
		if attrs.Flags&net.FlagUp != 0 {
			state = "up"
		}
		log.Infof("[interfaces] %s: %s", attrs.Name, state)
	}
}
