package safe

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGo_RunsFunctionToCompletion(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	var ran bool
	Go(func() {
		ran = true
		wg.Done()
	})
	wg.Wait()
	assert.True(t, ran)
}

func TestGo_RecoversPanicAndInvokesHandlers(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	var captured error
	Go(func() {
		panic("boom")
	}, func(err error) {
		captured = err
		wg.Done()
	})
	wg.Wait()
	require.Error(t, captured)
	assert.Contains(t, captured.Error(), "boom")
}

func TestGo_NoPanicHandlersSwallowsPanicSilently(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)
	Go(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait() // must not crash the test process
}

func TestWithRecover_NilFuncReturnsNil(t *testing.T) {
	assert.Nil(t, WithRecover(nil))
}

func TestWithRecover_RunsFunctionDirectlyWithoutGoroutine(t *testing.T) {
	ran := false
	wrapped := WithRecover(func() { ran = true })
	wrapped()
	assert.True(t, ran)
}

func TestWithRecover_CapturesStackTraceInPanicError(t *testing.T) {
	var captured error
	wrapped := WithRecover(func() {
		panic("boom")
	}, func(err error) {
		captured = err
	})
	wrapped()
	require.Error(t, captured)
	assert.Contains(t, captured.Error(), "stack")
}

func TestPanicError_ErrorIsCachedAcrossCalls(t *testing.T) {
	err := NewPanicError("boom", []byte("stack trace here"))
	first := err.Error()
	second := err.Error()
	assert.Equal(t, first, second)
	assert.Contains(t, first, "boom")
	assert.Contains(t, first, "stack trace here")
}
