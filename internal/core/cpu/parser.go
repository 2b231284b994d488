package cpu

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"browserperf/internal/domain"
)

// Legacy top rows look like
//
//	PID USER PR NI CPU% S #THR VSS RSS PCY Name
//
// and the CPU column is counted back from the package name so leading
// noise on the row does not shift it.
const legacyCPUFromEnd = 7

var (
	errNoMatchingLine = errors.New("no line names the application")
	errNoPercentField = errors.New("no percentage field on the application line")
	errShortLine      = errors.New("process line has too few fields")
)

// ParseModern extracts the CPU percentage of appName from a modern top
// listing. It returns 0 when the value cannot be found or parsed.
func ParseModern(output, appName string) float64 {
	v, _ := parseModern(output, appName)
	return v
}

// ParseLegacy extracts the CPU percentage from a legacy process status row.
// It returns 0 when the value cannot be found or parsed.
func ParseLegacy(output, appName string) float64 {
	v, _ := parseLegacy(output, appName)
	return v
}

// parseSample dispatches on the capability class. The error explains a zero
// and is only ever logged.
func parseSample(class domain.CapabilityClass, output, appName string) (float64, error) {
	if class == domain.CapabilityLegacy {
		return parseLegacy(output, appName)
	}
	return parseModern(output, appName)
}

func parseModern(output, appName string) (float64, error) {
	for line := range strings.Lines(output) {
		fields := strings.Fields(line)
		if !slices.Contains(fields, appName) {
			continue
		}

		for _, f := range fields {
			num, ok := strings.CutSuffix(f, "%")
			if !ok || num == "" {
				continue
			}
			return parsePercent(num)
		}

		return 0, errNoPercentField
	}

	return 0, errNoMatchingLine
}

func parseLegacy(output, appName string) (float64, error) {
	line, err := legacyLine(output, appName)
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(line)
	if len(fields) < legacyCPUFromEnd {
		return 0, errShortLine
	}

	raw := strings.TrimSuffix(fields[len(fields)-legacyCPUFromEnd], "%")
	return parsePercent(raw)
}

// legacyLine picks the row whose last field is appName.
func legacyLine(output, appName string) (string, error) {
	for line := range strings.Lines(output) {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[len(fields)-1] == appName {
			return line, nil
		}
	}

	return "", errNoMatchingLine
}

func parsePercent(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse percentage %q: %w", raw, err)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("percentage %q out of range", raw)
	}

	return v, nil
}
