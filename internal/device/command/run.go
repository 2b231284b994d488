// Package command
package command

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

const (
	initialScannerBufferSize = 4096
	maxScannerBufferSize     = 10 * 1024 * 1024
)

type StreamHandler = func(line string, isErr bool)

type Command struct {
	name string
	args []string
}

func NewCommand(name string, args ...string) *Command {
	return &Command{
		name: name,
		args: args,
	}
}

// Run executes the command and returns its stdout. Stderr lines only reach
// the handlers.
func (c *Command) Run(ctx context.Context, handlers ...StreamHandler) (string, error) {
	var (
		mu  sync.Mutex
		buf bytes.Buffer
	)

	err := c.execute(ctx, func(line string, isErr bool) {
		if !isErr {
			mu.Lock()
			buf.WriteString(line)
			buf.WriteString("\n")
			mu.Unlock()
		}

		for _, h := range handlers {
			if h != nil {
				h(line, isErr)
			}
		}
	})

	return buf.String(), err
}

func (c *Command) execute(ctx context.Context, onStream StreamHandler) error {
	cmd := exec.CommandContext(ctx, c.name, c.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	errChan := make(chan error, 2)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := streamOutput(stdout, onStream, false); err != nil {
			errChan <- fmt.Errorf("stdout stream error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		if err := streamOutput(stderr, onStream, true); err != nil {
			errChan <- fmt.Errorf("stderr stream error: %w", err)
		}
	}()

	wg.Wait()
	close(errChan)

	var streamErrs []error
	for err := range errChan {
		streamErrs = append(streamErrs, err)
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	if len(streamErrs) > 0 {
		return fmt.Errorf("stream errors occurred: %v", streamErrs)
	}

	return nil
}

func streamOutput(r io.Reader, handler StreamHandler, isErr bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialScannerBufferSize), maxScannerBufferSize)

	for scanner.Scan() {
		// adb shell on older devices emits CRLF
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			handler(line, isErr)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}
