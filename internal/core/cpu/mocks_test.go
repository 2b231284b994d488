package cpu

import (
	"context"

	"github.com/stretchr/testify/mock"

	"browserperf/internal/domain"
)

const testApp = "org.mozilla.geckoview_example"

var testCommands = Commands{
	Version: "getprop ro.build.version.release",
	Modern:  "top -O %CPU -n 1",
	Legacy:  "top -n 1",
}

type mockShell struct {
	mock.Mock
}

func (m *mockShell) ShellOutput(_ context.Context, command string) (string, error) {
	args := m.Called(command)
	return args.String(0), args.Error(1)
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Submit(_ context.Context, record domain.SummaryRecord) error {
	return m.Called(record).Error(0)
}
