package result

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WrapsValueAndError(t *testing.T) {
	r := New(42, error(nil))
	v, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestValue_HasNoError(t *testing.T) {
	r := Value("hello")
	assert.NoError(t, r.Error())
	assert.Equal(t, "hello", r.Value())
}

func TestError_HasZeroValue(t *testing.T) {
	boom := errors.New("boom")
	r := Error[int](boom)
	assert.Equal(t, 0, r.Value())
	assert.Equal(t, boom, r.Error())
}

func TestResult_String_SuccessUsesStringerWhenAvailable(t *testing.T) {
	r := Value(time.Second)
	assert.Equal(t, "value: 1s", r.String())
}

func TestResult_String_ErrorFormatsMessage(t *testing.T) {
	r := Error[int](errors.New("boom"))
	assert.Equal(t, "error: boom", r.String())
}

func TestMap_TransformsSuccessfulValue(t *testing.T) {
	r := Value(10)
	doubled := Map(r, func(x int) int { return x * 2 })
	v, err := doubled.Get()
	require.NoError(t, err)
	assert.Equal(t, 20, v)
}

func TestMap_PropagatesErrorWithoutCallingFn(t *testing.T) {
	boom := errors.New("boom")
	r := Error[int](boom)
	called := false
	mapped := Map(r, func(x int) string {
		called = true
		return "unreachable"
	})
	_, err := mapped.Get()
	assert.Equal(t, boom, err)
	assert.False(t, called)
}
