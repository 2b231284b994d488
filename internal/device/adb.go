// Package device provides shell access to the device under test.
package device

import (
	"context"
	"fmt"
	"strings"

	"browserperf/internal/device/command"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

// ADB runs shell commands on a device through a local adb binary.
type ADB struct {
	adbPath string
	serial  string
	log     logger.Logger
}

func NewADB(adbPath, serial string, log logger.Logger) *ADB {
	return &ADB{adbPath: adbPath, serial: serial, log: log}
}

// CheckAttached fails with domain.ErrNoDevice unless adb reports the device
// in the "device" state.
func (a *ADB) CheckAttached(ctx context.Context) error {
	out, err := command.NewCommand(a.adbPath, a.args("get-state")...).Run(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoDevice, err)
	}

	if state := strings.TrimSpace(out); state != "device" {
		return fmt.Errorf("%w: state %q", domain.ErrNoDevice, state)
	}

	return nil
}

func (a *ADB) ShellOutput(ctx context.Context, cmd string) (string, error) {
	out, err := command.NewCommand(a.adbPath, a.args("shell", cmd)...).Run(ctx, a.logStderr)
	if err != nil {
		return "", fmt.Errorf("adb shell: %w", err)
	}

	return out, nil
}

func (a *ADB) args(rest ...string) []string {
	if a.serial == "" {
		return rest
	}
	return append([]string{"-s", a.serial}, rest...)
}

func (a *ADB) logStderr(line string, isErr bool) {
	if isErr {
		a.log.Debug("adb stderr", "serial", a.serial, "line", line)
	}
}
