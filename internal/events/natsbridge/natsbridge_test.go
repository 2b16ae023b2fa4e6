package natsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rovshanmuradov/token-launcher/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func TestForwarder_Handle(t *testing.T) {
	conn := &fakeConn{}
	f := NewForwarder(conn, "launcher.", zaptest.NewLogger(t))

	ev := events.WorkflowCompletedEvent{
		BaseEvent:  events.NewBase(events.WorkflowCompleted),
		WorkflowID: "w1",
		Operation:  "create_token",
		Signature:  "sig",
		Mint:       "mint",
	}
	require.NoError(t, f.Handle(context.Background(), ev))

	require.Len(t, conn.subjects, 1)
	assert.Equal(t, "launcher.workflow.completed", conn.subjects[0])

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	assert.Equal(t, "workflow.completed", decoded["type"])
	assert.Equal(t, "sig", decoded["signature"])
	assert.Equal(t, "mint", decoded["mint"])
}

func TestForwarder_PublishError(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	f := NewForwarder(conn, "launcher", zaptest.NewLogger(t))

	err := f.Handle(context.Background(), events.StepEvent{BaseEvent: events.NewBase(events.WorkflowStep)})
	assert.ErrorIs(t, err, conn.err)
}

func TestForwarder_Attach(t *testing.T) {
	conn := &fakeConn{}
	bus := events.NewBus(zaptest.NewLogger(t), 4)
	f := NewForwarder(conn, "launcher", zaptest.NewLogger(t))
	f.Attach(bus)

	require.NoError(t, bus.PublishSync(context.Background(), events.StepEvent{BaseEvent: events.NewBase(events.WorkflowStep), Step: events.StepSending}))
	require.NoError(t, bus.Shutdown(context.Background()))
	assert.Equal(t, []string{"launcher.workflow.step"}, conn.subjects)
}
