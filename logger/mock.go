package logger

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger is a testify mock implementing Logger.
//
// Tests that don't care about a level can use Permissive to accept every call
// and then assert on the recorded calls.
type MockLogger struct {
	mock.Mock
}

var _ Logger = (*MockLogger)(nil)

func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

// Permissive registers catch-all expectations for every logging level.
func (m *MockLogger) Permissive() *MockLogger {
	m.On("Debug", mock.Anything, mock.Anything).Return()
	m.On("Info", mock.Anything, mock.Anything).Return()
	m.On("Warn", mock.Anything, mock.Anything).Return()
	m.On("Error", mock.Anything, mock.Anything).Return()

	return m
}

// Messages returns the messages logged at the given method name ("Debug", "Info", ...), in call order.
func (m *MockLogger) Messages(method string) []string {
	var msgs []string
	for _, call := range m.Calls {
		if call.Method == method {
			msgs = append(msgs, call.Arguments.String(0))
		}
	}

	return msgs
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) SetLevel(level Level) {
	m.Called(level)
}

func (m *MockLogger) Level() Level {
	args := m.Called()
	return args.Get(0).(Level)
}

// With returns the mock itself so child loggers record into the same call list.
func (m *MockLogger) With(keyValues ...any) Logger {
	return m
}
