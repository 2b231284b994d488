package cpu

import (
	"context"
	"strconv"
	"strings"

	"browserperf/internal/domain"
)

// legacyMajorVersion is the first OS major version that ships the modern top.
const legacyMajorVersion = 8

type Commands struct {
	Version string
	Modern  string
	Legacy  string
}

// Route is the session-wide sampling setup picked from the device version.
type Route struct {
	Class   domain.CapabilityClass
	Command string
	Version string
}

type Router struct {
	commands Commands
}

func NewRouter(commands Commands) *Router {
	return &Router{commands: commands}
}

// Resolve queries the device version once. Shell errors are returned as is.
func (r *Router) Resolve(ctx context.Context, shell domain.DeviceShell) (Route, error) {
	raw, err := shell.ShellOutput(ctx, r.commands.Version)
	if err != nil {
		return Route{}, &domain.TransportError{Command: r.commands.Version, Err: err}
	}

	version := strings.TrimSpace(raw)
	class := ClassifyVersion(version)

	route := Route{Class: class, Command: r.commands.Modern, Version: version}
	if class == domain.CapabilityLegacy {
		route.Command = r.commands.Legacy
	}

	return route, nil
}

// ClassifyVersion maps a dotted version string to a capability class.
// Anything that does not start with a non-negative integer major is modern.
func ClassifyVersion(version string) domain.CapabilityClass {
	major, _, _ := strings.Cut(strings.TrimSpace(version), ".")

	n, err := strconv.Atoi(major)
	if err != nil || n < 0 {
		return domain.CapabilityModern
	}

	if n < legacyMajorVersion {
		return domain.CapabilityLegacy
	}

	return domain.CapabilityModern
}
