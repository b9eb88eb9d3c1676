package firewall

import (
	"fmt"

	"github.com/nftblock/nftblock/internal/config"
)

// SetupError reports a failed topology bootstrap step. Topology failures are
// fatal to the sync pass: populating sets without correct topology is
// meaningless.
type SetupError struct {
	Step string
	Err  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("topology setup failed at step %q: %v", e.Step, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Phases of set population that can fail independently.
const (
	PhaseClear = "clear"
	PhaseAdd   = "add"
)

// ApplyError reports a failed clear or batch-add for one address family.
// It is isolated: the other family and the overall run proceed.
type ApplyError struct {
	Family config.Family
	Phase  string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("failed to %s %s enforcement set: %v", e.Phase, e.Family, e.Err)
}

func (e *ApplyError) Unwrap() error {
	return e.Err
}
