package selfcontrol

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	logx "autoselfcontrol/pkg/logx"
)

// SelfControl ships its CLI inside the app bundle. The binary takes the
// target user id as its first argument, then the actual command.
const executableInBundle = "Contents/MacOS/org.eyebeam.SelfControl"

// ErrUndetectable means --is-running produced output the status pattern
// doesn't match, so the block state is unknown.
var ErrUndetectable = errors.New("could not detect if SelfControl is running")

// isRunningPattern matches SelfControl's defaults-style status output.
var isRunningPattern = regexp.MustCompile(`(?m)^.*org\.eyebeam\.SelfControl[^ ]+\s*(NO|YES)\s*$`)

// Runner drives the SelfControl binary for one user account.
type Runner struct {
	appPath string
	uid     string
	log     logx.Logger
}

func NewRunner(appPath, uid string, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{appPath: appPath, uid: uid, log: log}
}

// IsRunning reports whether a SelfControl block is currently active.
func (r *Runner) IsRunning(ctx context.Context) (bool, error) {
	out, err := r.exec(ctx, "--is-running")
	if err != nil {
		return false, err
	}
	return parseIsRunning(out)
}

// Start begins a block using the given blocklist file, running until the
// given end timestamp. SelfControl may take minutes to return.
func (r *Runner) Start(ctx context.Context, blocklistPath, until string) error {
	_, err := r.exec(ctx, "--install", blocklistPath, until)
	return err
}

func (r *Runner) exec(ctx context.Context, args ...string) ([]byte, error) {
	bin := filepath.Join(r.appPath, executableInBundle)
	argv := append([]string{r.uid}, args...)

	r.log.Debug("exec selfcontrol",
		logx.String("bin", bin),
		logx.String("uid", r.uid),
		logx.Any("args", args),
	)
	out, err := exec.CommandContext(ctx, bin, argv...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return out, fmt.Errorf("selfcontrol %s: %w", args[0], err)
		}
		return out, fmt.Errorf("selfcontrol %s: %s: %w", args[0], msg, err)
	}
	return out, nil
}

func parseIsRunning(out []byte) (bool, error) {
	m := isRunningPattern.FindSubmatch(out)
	if m == nil {
		return false, ErrUndetectable
	}
	return string(m[1]) != "NO", nil
}
