package domain

import (
	"context"
	"errors"
	"fmt"
)

var ErrNoDevice = errors.New("no device attached")

// CapabilityClass selects the sampling command and parse path for a session.
type CapabilityClass int

const (
	CapabilityModern CapabilityClass = iota
	CapabilityLegacy
)

func (c CapabilityClass) String() string {
	switch c {
	case CapabilityLegacy:
		return "legacy"
	default:
		return "modern"
	}
}

// SampleSeries is appended to only by the sampler that owns it and is read
// only after sampling has stopped.
type SampleSeries []float64

type CPUStats struct {
	Avg float64
	Min float64
	Max float64
}

const (
	StatAvg = "avg"
	StatMin = "min"
	StatMax = "max"
)

type SummaryRecord struct {
	Type   string             `json:"type" validate:"required,eq=cpu"`
	Test   string             `json:"test" validate:"required"`
	Unit   string             `json:"unit" validate:"required"`
	Values map[string]float64 `json:"values" validate:"len=1"`
}

func NewCPURecord(scenario, stat string, value float64) SummaryRecord {
	return SummaryRecord{
		Type:   "cpu",
		Test:   scenario + "-" + stat,
		Unit:   "%",
		Values: map[string]float64{stat: value},
	}
}

// DeviceShell runs one shell command on an attached device and returns its
// raw text output.
type DeviceShell interface {
	ShellOutput(ctx context.Context, command string) (string, error)
}

// ResultsSink is the results-collection endpoint.
type ResultsSink interface {
	Submit(ctx context.Context, record SummaryRecord) error
}

// TransportError marks a device connection failure. It is never recovered
// by the profiler.
type TransportError struct {
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("device shell %q failed: %v", e.Command, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
