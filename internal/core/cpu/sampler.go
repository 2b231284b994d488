package cpu

import (
	"context"
	"time"

	"browserperf/internal/core/event"
	"browserperf/internal/domain"
	"browserperf/internal/logger"
)

type samplerState int

const (
	stateUnattached samplerState = iota
	stateReady
	statePolling
)

// Sampler owns one scenario's sample series. Poll must not be called
// concurrently; the polling task serializes calls.
type Sampler struct {
	appName  string
	scenario string
	router   *Router

	shell domain.DeviceShell
	route Route
	state samplerState

	series domain.SampleSeries

	bus *event.Bus
	log logger.Logger
}

func NewSampler(appName, scenario string, router *Router, bus *event.Bus, log logger.Logger) *Sampler {
	return &Sampler{
		appName:  appName,
		scenario: scenario,
		router:   router,
		state:    stateUnattached,
		series:   make(domain.SampleSeries, 0, 64),
		bus:      bus,
		log:      log,
	}
}

// Attach resolves the capability class once. A nil shell leaves the sampler
// unattached, which is not an error.
func (s *Sampler) Attach(ctx context.Context, shell domain.DeviceShell) error {
	if shell == nil {
		s.log.Info("cpu: no device attached, profiling inactive")
		return nil
	}

	route, err := s.router.Resolve(ctx, shell)
	if err != nil {
		return err
	}

	s.shell = shell
	s.route = route
	s.state = stateReady

	s.log.Info("cpu: device attached",
		"version", route.Version,
		"capability", route.Class.String(),
		"command", route.Command,
	)

	return nil
}

func (s *Sampler) Attached() bool {
	return s.state != stateUnattached
}

func (s *Sampler) Capability() domain.CapabilityClass {
	return s.route.Class
}

// Poll takes one sample. ok is false when no device is attached, in which
// case no shell command runs. Parse failures are recorded as 0; shell
// failures are returned and nothing is appended.
func (s *Sampler) Poll(ctx context.Context) (value float64, ok bool, err error) {
	if s.state == stateUnattached {
		return 0, false, nil
	}

	s.state = statePolling
	defer func() { s.state = stateReady }()

	output, err := s.shell.ShellOutput(ctx, s.route.Command)
	if err != nil {
		return 0, false, &domain.TransportError{Command: s.route.Command, Err: err}
	}

	value, perr := parseSample(s.route.Class, output, s.appName)
	if perr != nil {
		s.log.Debug("cpu: unparsable sample recorded as zero", "app", s.appName, "reason", perr.Error())
	}

	s.series = append(s.series, value)
	s.log.Debug("cpu: sample", "value", value, "samples", len(s.series))

	if s.bus != nil {
		s.bus.Publish(domain.EventCPUSampled{
			Scenario:   s.scenario,
			Value:      value,
			Capability: s.route.Class,
			SampledAt:  time.Now().UTC(),
		})
	}

	return value, true, nil
}

// Series returns the collected samples. Call it only after polling stopped.
func (s *Sampler) Series() domain.SampleSeries {
	return s.series
}

// Record appends a value taken outside Poll, for callers that keep their
// own timer. Same single-writer rule as Poll.
func (s *Sampler) Record(value float64) {
	s.series = append(s.series, value)
}
