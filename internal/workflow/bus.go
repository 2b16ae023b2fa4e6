// internal/workflow/bus.go
package workflow

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// handlerFunc runs one workflow inside an execution.
type handlerFunc func(ctx context.Context, ex *execution, cmd Command) (*Outcome, error)

// CommandBus validates commands and dispatches them by concrete type.
type CommandBus struct {
	handlers map[reflect.Type]handlerFunc
	names    map[reflect.Type]string
	logger   *zap.Logger
	mu       sync.RWMutex
}

func NewCommandBus(logger *zap.Logger) *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]handlerFunc),
		names:    make(map[reflect.Type]string),
		logger:   logger.Named("command_bus"),
	}
}

// register binds handler to the concrete type of cmd.
func (bus *CommandBus) register(cmd Command, handler handlerFunc) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	t := reflect.TypeOf(cmd)
	bus.handlers[t] = handler
	bus.names[t] = cmd.GetType()

	bus.logger.Debug("Command handler registered", zap.String("command_type", cmd.GetType()))
}

// Send validates cmd and runs its handler. Validation errors are returned
// before any handler runs.
func (bus *CommandBus) Send(ctx context.Context, ex *execution, cmd Command) (*Outcome, error) {
	if err := cmd.Validate(); err != nil {
		bus.logger.Warn("Command validation failed",
			zap.String("command_type", cmd.GetType()),
			zap.Error(err))
		return nil, fmt.Errorf("command validation failed: %w", err)
	}

	bus.mu.RLock()
	handler, exists := bus.handlers[reflect.TypeOf(cmd)]
	bus.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("no handler registered for command type: %s", cmd.GetType())
	}

	return handler(ctx, ex, cmd)
}

// RegisteredCommands lists the command types the bus can dispatch.
func (bus *CommandBus) RegisteredCommands() []string {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	out := make([]string, 0, len(bus.names))
	for _, name := range bus.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
