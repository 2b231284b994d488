package cpu

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browserperf/internal/domain"
)

const legacyRow = " 31093 u0_a196  10 -10   8% S    66 1392100K 137012K  fg org.mozilla.geckoview_example"

func TestParseModern(t *testing.T) {
	topInfo, err := os.ReadFile("testdata/top-info.txt")
	require.NoError(t, err)

	tests := []struct {
		name   string
		output string
		want   float64
	}{
		{"top listing", string(topInfo), 93.7},
		{"single line", "17504 u0_a83 S 93.7% 9.5 0:22.83 " + testApp, 93.7},
		{"no matching line", "geckoview", 0},
		{"empty output", "", 0},
		{"only a sub process", "17586 u0_a83 S 4.0% " + testApp + ":tab", 0},
		{"no percent field", "17504 u0_a83 S 93.7 9.5 " + testApp, 0},
		{"garbage percent", "17504 u0_a83 S abc% " + testApp, 0},
		{"bare percent sign", "17504 u0_a83 S % " + testApp, 0},
		{"infinite percent", "17504 u0_a83 S Inf% " + testApp, 0},
		{"crlf line endings", "PID USER %CPU ARGS\r\n1 u0 12.5% " + testApp + "\r\n", 12.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseModern(tt.output, testApp), 1e-9)
		})
	}
}

func TestParseLegacy(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   float64
	}{
		{"documented row", legacyRow, 8},
		{"bare integer", "31093 u0_a196 10 -10 27 S 66 1392100K 137012K fg " + testApp, 27},
		{
			"row among others",
			"  PID USER     PR  NI CPU% S  #THR     VSS     RSS PCY Name\n" +
				"  612 system   12  -4   3% S   110 2184056K 198332K  fg system_server\n" +
				legacyRow + "\n",
			8,
		},
		{"empty output", "", 0},
		{"lone row for another process", "612 system 12 -4 3% S 110 2184056K 198332K fg system_server", 0},
		{"short row", "31093 8% " + testApp, 0},
		{"unparsable cpu", "31093 u0_a196 10 -10 N/A S 66 1392100K 137012K fg " + testApp, 0},
		{
			"several rows none for app",
			"612 system 12 -4 3% S 110 2184056K 198332K fg system_server\n" +
				"700 system 12 -4 1% S 10 284056K 98332K fg surfaceflinger\n",
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseLegacy(tt.output, testApp), 1e-9)
		})
	}
}

func TestParseSampleExplainsZero(t *testing.T) {
	v, err := parseSample(domain.CapabilityModern, "geckoview", testApp)
	assert.Zero(t, v)
	assert.ErrorIs(t, err, errNoMatchingLine)

	v, err = parseSample(domain.CapabilityLegacy, legacyRow, testApp)
	assert.NoError(t, err)
	assert.Equal(t, 8.0, v)
}
