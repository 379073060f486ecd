package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodeNotFound, "group not found")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(err, CodeForbidden))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
	assert.False(t, HasCode(nil, CodeNotFound))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to persist message")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeInternal))

	// The code survives another layer of fmt wrapping.
	outer := fmt.Errorf("send: %w", err)
	assert.True(t, HasCode(outer, CodeInternal))
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestMessageOfNeverLeaksInternals(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: relation missing")))
	assert.Equal(t, "internal error", MessageOf(Wrap(errors.New("pq: boom"), CodeInternal, "insert failed")))
	assert.Equal(t, "content is required", MessageOf(New(CodeValidation, "content is required")))
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation: http.StatusBadRequest,
		CodeBadRequest: http.StatusBadRequest,
		CodeNotFound:   http.StatusNotFound,
		CodeForbidden:  http.StatusForbidden,
		CodeConflict:   http.StatusConflict,
		CodeTimeout:    http.StatusGatewayTimeout,
		CodeInternal:   http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, ToHTTPStatus(code), string(code))
	}
}
