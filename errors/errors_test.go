package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	original := New("original")
	wrapped := Wrap(original, "wrapped")

	assert.Contains(t, wrapped.Error(), "wrapped")
	assert.Contains(t, wrapped.Error(), "original")
	assert.True(t, Is(wrapped, original))
}

func TestWithHint(t *testing.T) {
	err := WithHint(New("error"), "try this fix")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "try this fix", hints[0])
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
	assert.False(t, IsUnusableShape(nil))
	assert.False(t, IsRejected(nil))
}

func TestUnusableShape(t *testing.T) {
	err := NewUnusableShapef("callback %s returns %d values", "Filter", 1)

	assert.True(t, IsUnusableShape(err))
	assert.False(t, IsRejected(err))
	assert.Contains(t, err.Error(), "callback Filter returns 1 values")

	wrapped := Wrap(err, "event Changed")
	assert.True(t, IsUnusableShape(wrapped))
}

func TestRejected(t *testing.T) {
	err := Wrapf(ErrRejected, "TimerExtensions.g.go: %s", "expected '}', found 'EOF'")

	assert.True(t, IsRejected(err))
	assert.Contains(t, err.Error(), "expected '}'")
}

func ExampleWrap() {
	baseErr := New("no packages matched")
	err := Wrap(baseErr, "failed to load catalog")
	fmt.Println(err)
	// Output: failed to load catalog: no packages matched
}
