package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

// mockLogger implements Logger interface for testing.
type mockLogger struct {
	infoCalled  bool
	debugCalled bool
	warnCalled  bool
	errorCalled bool
	lastMsg     string
	lastFields  map[string]any
	lastErr     error
}

func (m *mockLogger) Info(_ context.Context, msg string, fields map[string]any) {
	m.infoCalled = true
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockLogger) Debug(_ context.Context, msg string, fields map[string]any) {
	m.debugCalled = true
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockLogger) Warn(_ context.Context, msg string, fields map[string]any) {
	m.warnCalled = true
	m.lastMsg = msg
	m.lastFields = fields
}

func (m *mockLogger) Error(_ context.Context, msg string, err error, fields map[string]any) {
	m.errorCalled = true
	m.lastMsg = msg
	m.lastErr = err
	m.lastFields = fields
}

func TestZapAdapter_Delegates(t *testing.T) {
	ctx := context.Background()
	fields := map[string]any{"owner": "adobe"}
	boom := errors.New("boom")

	mock := &mockLogger{}
	adapter := NewZapAdapter(mock)

	adapter.Info(ctx, "info message", fields)
	assert.True(t, mock.infoCalled)
	assert.Equal(t, "info message", mock.lastMsg)
	assert.Equal(t, fields, mock.lastFields)

	adapter.Debug(ctx, "debug message", fields)
	assert.True(t, mock.debugCalled)
	assert.Equal(t, "debug message", mock.lastMsg)

	adapter.Warn(ctx, "warn message", fields)
	assert.True(t, mock.warnCalled)
	assert.Equal(t, "warn message", mock.lastMsg)

	adapter.Error(ctx, "error message", boom, fields)
	assert.True(t, mock.errorCalled)
	assert.Equal(t, "error message", mock.lastMsg)
	assert.Equal(t, boom, mock.lastErr)
	assert.Equal(t, fields, mock.lastFields)
}

func TestZapAdapter_NilFields(t *testing.T) {
	mock := &mockLogger{}
	adapter := NewZapAdapter(mock)

	adapter.Info(context.Background(), "no fields", nil)

	assert.True(t, mock.infoCalled)
	assert.Nil(t, mock.lastFields)
}

func TestZapAdapter_WithFields(t *testing.T) {
	mock := &mockLogger{}
	base := NewZapAdapter(mock)
	child := base.WithFields(map[string]any{"version": "1.2.3", "component": "http"})

	child.Info(context.Background(), "request", map[string]any{"component": "resolver", "ref": "main"})

	assert.Equal(t, map[string]any{
		"version":   "1.2.3",
		"component": "resolver",
		"ref":       "main",
	}, mock.lastFields)

	// The parent is unaffected.
	base.Info(context.Background(), "plain", nil)
	assert.Nil(t, mock.lastFields)
}

func TestZapAdapter_WithFields_Nested(t *testing.T) {
	mock := &mockLogger{}
	child := NewZapAdapter(mock).
		WithFields(map[string]any{"a": 1}).
		WithFields(map[string]any{"b": 2})

	child.Warn(context.Background(), "nested", nil)

	assert.Equal(t, map[string]any{"a": 1, "b": 2}, mock.lastFields)
}

func TestNop(t *testing.T) {
	var l Logger = Nop{}
	assert.NotPanics(t, func() {
		l.Info(context.Background(), "x", nil)
		l.Debug(context.Background(), "x", nil)
		l.Warn(context.Background(), "x", nil)
		l.Error(context.Background(), "x", errors.New("x"), nil)
	})
}
