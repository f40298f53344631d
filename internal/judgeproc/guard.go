package judgeproc

import (
	"context"
	"path/filepath"
	"strings"

	pkgerrors "autojudge/pkg/errors"
	"autojudge/pkg/utils/logger"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// DefaultName is the process name of the Themis judge.
const DefaultName = "Themis"

// Prober answers whether a process with the given name is running.
type Prober interface {
	Running(ctx context.Context, name string) (bool, error)
}

// Guard refuses to go on unless the judge is up.
type Guard struct {
	Name   string
	Prober Prober
}

// New returns a guard backed by the OS process table.
func New(name string) Guard {
	if name == "" {
		name = DefaultName
	}
	return Guard{Name: name, Prober: ProcessTable{}}
}

// Check probes once, without retry.
func (g Guard) Check(ctx context.Context) error {
	running, err := g.Prober.Running(ctx, g.Name)
	if err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.ProcessProbeFail, "list processes failed: %v", err)
	}
	if !running {
		return pkgerrors.Newf(pkgerrors.ProcessNotFound, "%s is not running", g.Name).
			WithDetail("process", g.Name)
	}
	logger.Debug(ctx, "judge process found", zap.String("process", g.Name))
	return nil
}

// ProcessTable enumerates running processes with gopsutil.
type ProcessTable struct{}

func (ProcessTable) Running(ctx context.Context, name string) (bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, err
	}
	for _, p := range procs {
		// Processes may exit or deny access while we walk the table.
		if n, err := p.NameWithContext(ctx); err == nil && MatchName(n, name) {
			return true, nil
		}
		// Linux truncates comm to 15 bytes, fall back to argv[0].
		if argv, err := p.CmdlineSliceWithContext(ctx); err == nil && MatchArgv(argv, name) {
			return true, nil
		}
	}
	return false, nil
}

// MatchArgv reports whether argv[0] names the process, ignoring its directory.
func MatchArgv(argv []string, name string) bool {
	if len(argv) == 0 || argv[0] == "" {
		return false
	}
	return MatchName(filepath.Base(argv[0]), name)
}

// MatchName compares process names case-insensitively, ignoring a .exe suffix.
func MatchName(got, want string) bool {
	return strings.EqualFold(trimExe(got), trimExe(want))
}

func trimExe(name string) string {
	if len(name) > 4 && strings.EqualFold(name[len(name)-4:], ".exe") {
		return name[:len(name)-4]
	}
	return name
}
