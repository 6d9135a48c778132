package eventbus_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/gestaches/internal/shared/domain"
	"github.com/felixgeelhaar/gestaches/internal/shared/infrastructure/eventbus"
)

type titledEvent struct {
	domain.BaseEvent
	Title string `json:"title"`
}

func newTitledEvent(id, title string) titledEvent {
	return titledEvent{
		BaseEvent: domain.NewBaseEvent(id, "Task", "tasks.task.added"),
		Title:     title,
	}
}

func TestInProcessEventBus_Publish(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(quietLogger())
	consumer := &mockConsumer{eventTypes: []string{"tasks.task.added"}}
	bus.RegisterConsumer(consumer)

	event := &eventbus.ConsumedEvent{
		EventID:       uuid.New(),
		AggregateID:   "task-1",
		AggregateType: "Task",
		RoutingKey:    "tasks.task.added",
		OccurredAt:    time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "tasks.task.added", payload))

	require.Len(t, consumer.events, 1)
	assert.Equal(t, event.EventID, consumer.events[0].EventID)
	assert.Equal(t, "task-1", consumer.events[0].AggregateID)
}

func TestInProcessEventBus_PublishDomainEvent(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(quietLogger())
	consumer := &mockConsumer{eventTypes: []string{"tasks.task.*"}}
	bus.RegisterConsumer(consumer)

	event := newTitledEvent("task-9", "Buy milk")
	require.NoError(t, bus.PublishDomainEvent(context.Background(), event))

	require.Len(t, consumer.events, 1)
	got := consumer.events[0]
	assert.Equal(t, event.EventID(), got.EventID)
	assert.Equal(t, "task-9", got.AggregateID)
	assert.Equal(t, "tasks.task.added", got.RoutingKey)

	var payload struct {
		Title string `json:"title"`
	}
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, "Buy milk", payload.Title)
}

func TestInProcessEventBus_FillsRoutingKey(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(quietLogger())
	consumer := &mockConsumer{eventTypes: []string{"tasks.timer.ticked"}}
	bus.RegisterConsumer(consumer)

	require.NoError(t, bus.Publish(context.Background(), "tasks.timer.ticked", []byte(`{"aggregate_id":"t"}`)))

	require.Len(t, consumer.events, 1)
	assert.Equal(t, "tasks.timer.ticked", consumer.events[0].RoutingKey)
}

func TestInProcessEventBus_SwallowsErrors(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(quietLogger())
	bus.RegisterConsumer(&mockConsumer{eventTypes: []string{"#"}, err: errors.New("boom")})

	assert.NoError(t, bus.Publish(context.Background(), "tasks.task.added", []byte("not json")))
	assert.NoError(t, bus.PublishDomainEvent(context.Background(), newTitledEvent("t", "x")))
}

func TestInProcessEventBus_ReentrantPublish(t *testing.T) {
	bus := eventbus.NewInProcessEventBus(quietLogger())
	followUp := &mockConsumer{eventTypes: []string{"tasks.task.removed"}}
	bus.RegisterConsumer(followUp)
	bus.RegisterConsumer(eventbus.ConsumerFunc{
		Types: []string{"tasks.task.added"},
		Fn: func(ctx context.Context, e *eventbus.ConsumedEvent) error {
			body, _ := json.Marshal(&eventbus.ConsumedEvent{AggregateID: e.AggregateID, RoutingKey: "tasks.task.removed"})
			return bus.Publish(ctx, "tasks.task.removed", body)
		},
	})

	done := make(chan struct{})
	go func() {
		_ = bus.PublishDomainEvent(context.Background(), newTitledEvent("t-2", "nested"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publishing from a consumer deadlocked")
	}
	require.Len(t, followUp.events, 1)
	assert.Equal(t, "t-2", followUp.events[0].AggregateID)
}
