package rtos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleErrorMessageAndCode(t *testing.T) {
	err := NewHandleError("TaskHandle.Name", 7)
	assert.Equal(t, CodeInvalidHandle, err.Code)
	assert.Contains(t, err.Error(), "tid=7")
	assert.True(t, errors.Is(err, ErrInvalidHandle))
}

func TestBuilderErrorIs(t *testing.T) {
	err := NewBuilderError("ArgsBuilder.AddArg", "capacity 2 exceeded")
	assert.True(t, errors.Is(err, ErrBuilderMisuse))
	assert.False(t, errors.Is(err, ErrInvalidHandle))
}

func TestConfigErrorUnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := NewConfigError("Init", "bad config", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeInvalidConfig))
}

func TestIsCodeNilError(t *testing.T) {
	assert.False(t, IsCode(nil, CodeFault))
}
