package utils

import (
	"errors"
	"testing"
	"time"

	"golang-dex-token-analyzer/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecover(t *testing.T) {
	assert.NoError(t, Recover(func() error { return nil }))
	assert.EqualError(t, Recover(func() error { return errors.New("plain") }), "plain")

	err := Recover(func() error { panic("boom") })
	assert.EqualError(t, err, "panic: boom")
}

func TestGoSafe(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	log := &logger.Logger{Logger: zap.New(core)}

	done := make(chan struct{})
	GoSafe(log, func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}

	assert.Eventually(t, func() bool { return logs.Len() == 1 }, time.Second, 5*time.Millisecond)
	entry := logs.All()[0]
	assert.Equal(t, "Recovered from panic", entry.Message)
	require.Contains(t, entry.ContextMap(), "panic")
	assert.Equal(t, "boom", entry.ContextMap()["panic"])
	assert.Contains(t, entry.ContextMap()["stack"], "runtime/debug.Stack")
}

func TestGoSafe_NilLogger(t *testing.T) {
	done := make(chan struct{})
	GoSafe(nil, func() {
		defer close(done)
		panic("ignored")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("goroutine did not finish")
	}
}

func TestFromUnixMilli(t *testing.T) {
	assert.Nil(t, FromUnixMilli(0))
	assert.Nil(t, FromUnixMilli(-5))

	got := FromUnixMilli(1700000000123)
	if assert.NotNil(t, got) {
		assert.Equal(t, time.UTC, got.Location())
		assert.Equal(t, int64(1700000000123), got.UnixMilli())
	}
}

func TestToPointer(t *testing.T) {
	p := ToPointer(42)
	*p = 7
	assert.Equal(t, 7, *p)
}
