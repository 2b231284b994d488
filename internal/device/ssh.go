package device

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

const sshDialTimeout = 10 * time.Second

type SSHOptions struct {
	Address        string
	User           string
	KeyFile        string
	KnownHostsFile string
	ADBPath        string
	Serial         string
}

// SSH reaches a device plugged into a remote lab host by running adb there.
type SSH struct {
	client  *ssh.Client
	adbPath string
	serial  string
	log     logger.Logger
}

var ErrNoKnownHosts = errors.New("ssh known hosts file is required")

func DialSSH(opts SSHOptions, log logger.Logger) (*SSH, error) {
	if opts.KnownHostsFile == "" {
		return nil, ErrNoKnownHosts
	}

	key, err := os.ReadFile(opts.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read ssh key: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ssh key: %w", err)
	}

	hostKeyCallback, err := knownhosts.New(opts.KnownHostsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load known hosts: %w", err)
	}

	client, err := ssh.Dial("tcp", opts.Address, &ssh.ClientConfig{
		User:            opts.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         sshDialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial failed: %w", err)
	}

	log.Info("ssh: connected to device host", "address", opts.Address)

	return &SSH{client: client, adbPath: opts.ADBPath, serial: opts.Serial, log: log}, nil
}

func (s *SSH) CheckAttached(ctx context.Context) error {
	out, err := s.run(ctx, s.adbCommand("get-state"))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoDevice, err)
	}

	if state := strings.TrimSpace(out); state != "device" {
		return fmt.Errorf("%w: state %q", domain.ErrNoDevice, state)
	}

	return nil
}

func (s *SSH) ShellOutput(ctx context.Context, cmd string) (string, error) {
	out, err := s.run(ctx, s.adbCommand("shell", cmd))
	if err != nil {
		return "", fmt.Errorf("remote adb shell: %w", err)
	}

	return strings.ReplaceAll(out, "\r\n", "\n"), nil
}

func (s *SSH) Close() error {
	return s.client.Close()
}

func (s *SSH) run(ctx context.Context, remote string) (string, error) {
	session, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open ssh session: %w", err)
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() { done <- session.Run(remote) }()

	select {
	case err := <-done:
		if stderr.Len() > 0 {
			s.log.Debug("remote adb stderr", "serial", s.serial, "output", strings.TrimSpace(stderr.String()))
		}
		if err != nil {
			return "", err
		}
		return stdout.String(), nil
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return "", ctx.Err()
	}
}

func (s *SSH) adbCommand(args ...string) string {
	parts := []string{shellQuote(s.adbPath)}
	if s.serial != "" {
		parts = append(parts, "-s", shellQuote(s.serial))
	}
	for _, a := range args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
