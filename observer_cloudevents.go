package taskgen

import (
	"context"
	"fmt"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for the CloudEvents Event type for convenience
type CloudEvent = cloudevents.Event

// NewCloudEvent creates a new CloudEvent with the specified parameters.
func NewCloudEvent(eventType, source string, data interface{}, metadata map[string]interface{}) cloudevents.Event {
	event := cloudevents.NewEvent()

	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}

	for key, value := range metadata {
		event.SetExtension(key, value)
	}

	return event
}

// generateEventID generates a unique identifier for CloudEvents using UUIDv7.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// DecodeSubTaskEvent extracts the SubTaskEvent carried by event.
func DecodeSubTaskEvent(event cloudevents.Event) (SubTaskEvent, error) {
	var data SubTaskEvent
	if err := event.DataAs(&data); err != nil {
		return SubTaskEvent{}, fmt.Errorf("decode %s event: %w", event.Type(), err)
	}
	return data, nil
}

// ChannelObserver forwards events to a channel, which makes the order of
// notifications observable from tests and other goroutines.
type ChannelObserver struct {
	id string
	ch chan cloudevents.Event
}

// NewChannelObserver creates an observer with a channel buffered for size events.
func NewChannelObserver(id string, size int) *ChannelObserver {
	return &ChannelObserver{id: id, ch: make(chan cloudevents.Event, size)}
}

// CompletionChannel registers a channel observer for sub-task completion
// events on s and returns it.
func CompletionChannel(s Subject, size int) (*ChannelObserver, error) {
	o := NewChannelObserver("taskgen.completion."+generateEventID(), size)
	if err := s.RegisterObserver(o, EventTypeSubTaskCompleted); err != nil {
		return nil, err
	}
	return o, nil
}

// Events returns the receiving end of the channel.
func (c *ChannelObserver) Events() <-chan cloudevents.Event {
	return c.ch
}

// OnEvent blocks until the event is buffered or ctx is done.
func (c *ChannelObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	select {
	case c.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ObserverID implements Observer.
func (c *ChannelObserver) ObserverID() string {
	return c.id
}

// loggingObserver is registered on every Generator and reports completions.
type loggingObserver struct {
	logger Logger
	paths  *Paths
}

func (o *loggingObserver) OnEvent(_ context.Context, event cloudevents.Event) error {
	data, err := DecodeSubTaskEvent(event)
	if err != nil {
		return err
	}
	switch event.Type() {
	case EventTypeSubTaskCompleted:
		o.logger.Info("Task done", "task", data.SubTask, "dest", o.paths.Display(o.paths.Abs(data.Config.Dest.Value())))
	case EventTypeBundleRebuilt:
		o.logger.Info("Bundle rebuilt", "task", data.SubTask, "path", o.paths.Display(data.Path))
	case EventTypeBundleFailed:
		o.logger.Error("Bundle failed", "task", data.SubTask, "error", data.Error)
	}
	return nil
}

func (o *loggingObserver) ObserverID() string {
	return "taskgen.logging"
}
