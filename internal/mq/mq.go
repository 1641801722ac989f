package mq

import (
	"context"
	"errors"
	"sync/atomic"
)

// AttrType carries the event name on every published message so consumers
// can filter without decoding the body.
const AttrType = "type"

// ContentTypeJSON is the body encoding of every event on the bus.
const ContentTypeJSON = "application/json"

// ErrClosed is returned by Publish and Subscribe after Close.
var ErrClosed = errors.New("mq: closed")

// Message represents a broker-agnostic payload delivered to subscribers.
type Message struct {
	ID         string
	Data       []byte
	Attributes map[string]string
}

// Type returns the event name attribute, if any.
func (m Message) Type() string {
	return m.Attributes[AttrType]
}

// Handler processes a message. Return an error to signal a retry/nack.
type Handler func(ctx context.Context, msg Message) error

// Backend defines the broker-agnostic operations used by the app.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Subscribe(ctx context.Context, channel string, handler Handler) error
	Close() error
}

// MQ wraps a backend with a stable API.
type MQ struct {
	backend Backend
	closed  atomic.Bool
}

// New constructs an MQ wrapper for the provided backend.
func New(backend Backend) *MQ {
	return &MQ{backend: backend}
}

// Publish sends a message to the named channel.
func (m *MQ) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	if m.closed.Load() {
		return "", ErrClosed
	}
	return m.backend.Publish(ctx, channel, data, attrs)
}

// Subscribe consumes messages from the named channel until ctx is done.
func (m *MQ) Subscribe(ctx context.Context, channel string, handler Handler) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return m.backend.Subscribe(ctx, channel, handler)
}

// Close closes the underlying backend. Later calls are no-ops.
func (m *MQ) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return nil
	}
	return m.backend.Close()
}
