package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/nftblock/nftblock/internal/log"
)

// restartableRunner keeps a component goroutine alive across crashes so that
// a panicking API server cannot take the sync loop down with it.
type restartableRunner struct {
	name    string
	runFunc func(ctx context.Context) error

	restartBackoff time.Duration
	maxBackoff     time.Duration
}

func newRestartableRunner(name string, runFunc func(ctx context.Context) error) *restartableRunner {
	return &restartableRunner{
		name:           name,
		runFunc:        runFunc,
		restartBackoff: 1 * time.Second,
		maxBackoff:     30 * time.Second,
	}
}

// Start launches the run loop in a goroutine. The loop ends when runFunc
// exits cleanly or the context is cancelled.
func (r *restartableRunner) Start(ctx context.Context) {
	go r.runLoop(ctx)
}

func (r *restartableRunner) runLoop(ctx context.Context) {
	backoff := r.restartBackoff

	for {
		err := r.runWithRecovery(ctx)

		if err == nil {
			log.Infof("%s: exited cleanly", r.name)
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Errorf("%s: crashed with error: %v. Restarting in %v", r.name, err, backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > r.maxBackoff {
			backoff = r.maxBackoff
		}
	}
}

func (r *restartableRunner) runWithRecovery(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()

	return r.runFunc(ctx)
}
