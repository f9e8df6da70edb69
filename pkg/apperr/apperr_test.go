package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrappedError(t *testing.T) {
	base := NotFound("category %s not found", "abc")
	wrapped := fmt.Errorf("handler: %w", base)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))
	assert.Equal(t, "category abc not found", Message(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, Is(nil, KindInternal))
	assert.Equal(t, "Internal server error", Message(err))
}

func TestStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Storage(cause, "failed to save category")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save category: connection reset", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:             http.StatusNotFound,
		KindDuplicateName:        http.StatusConflict,
		KindDuplicateSubcategory: http.StatusBadRequest,
		KindValidation:           http.StatusBadRequest,
		KindInvalidStatus:        http.StatusBadRequest,
		KindParse:                http.StatusBadRequest,
		KindPermission:           http.StatusForbidden,
		KindUnauthorized:         http.StatusUnauthorized,
		KindTimeout:              http.StatusGatewayTimeout,
		KindStorage:              http.StatusInternalServerError,
		KindInternal:             http.StatusInternalServerError,
	}
	for kind, want := range cases {
		assert.Equal(t, want, HTTPStatus(kind), string(kind))
	}
}
