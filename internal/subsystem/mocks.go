package subsystem

import (
	"context"
	"fmt"

	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a mock implementation of CommandExecutor.
// Expectations match on the binary name followed by each argument.
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) RunCommand(ctx context.Context, name string, arg ...string) (string, error) {
	argsSlice := make([]interface{}, 0, len(arg)+1)
	argsSlice = append(argsSlice, name)
	for _, a := range arg {
		argsSlice = append(argsSlice, a)
	}

	args := m.Called(argsSlice...)
	return args.String(0), args.Error(1)
}

// ExitError builds the error a real executor returns for a non-zero exit.
func ExitError(code int) error {
	return &CallError{Command: "mock", ExitCode: code, Err: fmt.Errorf("exit status %d", code)}
}
