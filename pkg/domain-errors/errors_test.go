package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("nil error stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("cause is reachable", func(t *testing.T) {
		cause := errors.New("disk full")
		err := Wrap(cause, CodeInternal, "save snapshot")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "save snapshot: disk full", err.Error())
		assert.True(t, HasCode(err, CodeInternal))
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeNotFound, CodeOf(New(CodeNotFound, "no snapshot")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
	assert.False(t, HasCode(errors.New("plain"), CodeValidation))
	assert.True(t, Is(Newf(CodeValidation, "bad %s", "year"), CodeValidation))
}
