package launchctl

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Load registers a launchd job from its plist. The -w flag clears a
// previous "disabled" override so the job survives reboots.
func Load(ctx context.Context, plistPath string) error {
	return run(ctx, "load", "-w", plistPath)
}

// Unload removes a launchd job. The -w flag records the job as disabled.
func Unload(ctx context.Context, plistPath string) error {
	return run(ctx, "unload", "-w", plistPath)
}

// IsLoaded reports whether a job with the given label is known to launchd.
func IsLoaded(ctx context.Context, label string) (bool, error) {
	cmd := exec.CommandContext(ctx, "launchctl", "list", label)
	if err := cmd.Run(); err != nil {
		// list exits non-zero when the label is unknown
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func run(ctx context.Context, args ...string) error {
	out, err := exec.CommandContext(ctx, "launchctl", args...).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("launchctl %s: %w", args[0], err)
		}
		return fmt.Errorf("launchctl %s: %s: %w", args[0], msg, err)
	}
	return nil
}
