// Package taskgen compiles declarative build configurations into tasks
// registered with a host task runner.
//
// Progress is reported through the Observer pattern with CloudEvents: every
// constructed sub-task pipeline and every live bundle rebuild is published to
// the registered observers.
package taskgen

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer defines the interface for objects that want to be notified of events.
type Observer interface {
	// OnEvent is called for every event the observer subscribed to.
	// Observers are called synchronously and should return quickly.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// Subject defines the interface for objects that can be observed.
type Subject interface {
	// RegisterObserver adds an observer. If eventTypes is empty, the observer
	// receives all events.
	RegisterObserver(observer Observer, eventTypes ...string) error

	// UnregisterObserver removes an observer. Unknown observers are ignored.
	UnregisterObserver(observer Observer) error

	// NotifyObservers delivers event to every interested observer.
	NotifyObservers(ctx context.Context, event cloudevents.Event) error

	// GetObservers returns information about currently registered observers.
	GetObservers() []ObserverInfo
}

// ObserverInfo provides information about a registered observer.
type ObserverInfo struct {
	ID           string    `json:"id"`
	EventTypes   []string  `json:"eventTypes"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Event types emitted by the task generator.
const (
	// Sub-task events
	EventTypeSubTaskCompleted = "com.taskgen.subtask.completed"
	EventTypeSubTaskSkipped   = "com.taskgen.subtask.skipped"

	// Task registration events
	EventTypeTaskRegistered = "com.taskgen.task.registered"

	// Bundle events
	EventTypeBundleRebuilt = "com.taskgen.bundle.rebuilt"
	EventTypeBundleFailed  = "com.taskgen.bundle.failed"
)

// EventSource is the CloudEvents source of every event emitted here.
const EventSource = "taskgen"

// SubTaskEvent is the data of sub-task and bundle events.
type SubTaskEvent struct {
	Task    string        `json:"task"`
	SubTask string        `json:"subTask"`
	Config  SubTaskConfig `json:"config"`
	Path    string        `json:"path,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// FunctionalObserver provides a simple way to create observers using functions.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates a new observer that uses the provided function
// to handle events.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{
		id:      id,
		handler: handler,
	}
}

// OnEvent implements the Observer interface by calling the handler function.
func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

// ObserverID implements the Observer interface by returning the observer ID.
func (f *FunctionalObserver) ObserverID() string {
	return f.id
}

type observerRegistration struct {
	observer     Observer
	eventTypes   map[string]bool
	registeredAt time.Time
}

// subject is the Subject implementation embedded by Generator. Observers are
// notified in registration order.
type subject struct {
	mu        sync.RWMutex
	observers []*observerRegistration
}

func (s *subject) RegisterObserver(observer Observer, eventTypes ...string) error {
	if observer == nil {
		return ErrObserverNil
	}
	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}
	reg := &observerRegistration{observer: observer, eventTypes: types, registeredAt: time.Now()}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.observers {
		if r.observer.ObserverID() == observer.ObserverID() {
			s.observers[i] = reg
			return nil
		}
	}
	s.observers = append(s.observers, reg)
	return nil
}

func (s *subject) UnregisterObserver(observer Observer) error {
	if observer == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = slices.DeleteFunc(s.observers, func(r *observerRegistration) bool {
		return r.observer.ObserverID() == observer.ObserverID()
	})
	return nil
}

func (s *subject) NotifyObservers(ctx context.Context, event cloudevents.Event) error {
	s.mu.RLock()
	regs := slices.Clone(s.observers)
	s.mu.RUnlock()

	var errs []error
	for _, r := range regs {
		if len(r.eventTypes) > 0 && !r.eventTypes[event.Type()] {
			continue
		}
		if err := r.observer.OnEvent(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("observer %s: %w", r.observer.ObserverID(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *subject) GetObservers() []ObserverInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info := make([]ObserverInfo, 0, len(s.observers))
	for _, r := range s.observers {
		types := make([]string, 0, len(r.eventTypes))
		for t := range r.eventTypes {
			types = append(types, t)
		}
		slices.Sort(types)
		info = append(info, ObserverInfo{ID: r.observer.ObserverID(), EventTypes: types, RegisteredAt: r.registeredAt})
	}
	return info
}
