package domain

import "time"

type EventCPUSampled struct {
	Scenario   string
	Value      float64
	Capability CapabilityClass
	SampledAt  time.Time
}

type EventScenarioReported struct {
	Scenario string
	Stats    CPUStats
	Samples  int
}
