package commands

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/nftblock/nftblock/internal/api"
	"github.com/nftblock/nftblock/internal/config"
	"github.com/nftblock/nftblock/internal/log"
	"github.com/nftblock/nftblock/internal/service"
)

func CreateServiceCommand() *ServiceCommand {
	sc := &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}
	return sc
}

// ServiceCommand runs nftblock as a long-lived process: periodic sync passes
// plus the optional HTTP API. SIGHUP/SIGUSR1 request an immediate sync.
type ServiceCommand struct {
	fs  *flag.FlagSet
	cfg *config.Config

	syncService *service.SyncService
}

func (s *ServiceCommand) Name() string {
	return s.fs.Name()
}

func (s *ServiceCommand) Init(args []string, ctx *AppContext) error {
	if err := s.fs.Parse(args); err != nil {
		return err
	}

	if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
		return err
	} else {
		s.cfg = cfg
	}

	syncService, err := service.New(s.cfg)
	if err != nil {
		return err
	}
	s.syncService = syncService

	return nil
}

func (s *ServiceCommand) Run() error {
	log.Infof("Starting nftblock service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGUSR1)

	if s.cfg.API != nil && s.cfg.API.Enabled {
		server := api.NewServer(s.cfg, s.syncService)
		runner := newRestartableRunner("api-server", server.Serve)
		runner.Start(ctx)
	}

	syncDone := make(chan error, 1)
	go func() {
		syncDone <- s.syncService.Run(ctx)
	}()

	for {
		select {
		case sig := <-sigChan:
			switch sig {
			case syscall.SIGHUP, syscall.SIGUSR1:
				log.Infof("Received %v, requesting immediate sync", sig)
				s.syncService.TriggerSync()
			default:
				log.Infof("Received %v, shutting down", sig)
				cancel()
				return <-syncDone
			}
		case err := <-syncDone:
			return err
		}
	}
}
