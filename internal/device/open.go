package device

import (
	"context"
	"io"

	"browserperf/internal/config"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

type shellChecker interface {
	domain.DeviceShell
	CheckAttached(ctx context.Context) error
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open connects the configured transport. It returns a nil shell and no
// error when no device is attached, so callers simply skip profiling.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (domain.DeviceShell, io.Closer, error) {
	var (
		shell  shellChecker
		closer io.Closer = nopCloser{}
	)

	switch cfg.DeviceTransport {
	case config.TransportNone:
		return nil, closer, nil
	case config.TransportSSH:
		s, err := DialSSH(SSHOptions{
			Address:        cfg.SSHAddress,
			User:           cfg.SSHUser,
			KeyFile:        cfg.SSHKeyFile,
			KnownHostsFile: cfg.SSHKnownHosts,
			ADBPath:        cfg.ADBPath,
			Serial:         cfg.DeviceSerial,
		}, log)
		if err != nil {
			return nil, closer, err
		}
		shell, closer = s, s
	default:
		shell = NewADB(cfg.ADBPath, cfg.DeviceSerial, log)
	}

	if err := shell.CheckAttached(ctx); err != nil {
		log.Warn("device: not attached", "serial", cfg.DeviceSerial, "error", err)
		return nil, closer, nil
	}

	return shell, closer, nil
}
