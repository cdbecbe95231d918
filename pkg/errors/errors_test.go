package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithInternalKeepsOriginal(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ErrInternalServer.WithInternal(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, ErrInternalServer.Code, err.Code)
	require.NotSame(t, ErrInternalServer, err)
	require.Nil(t, ErrInternalServer.Internal)
}

func TestFromErrorPassthrough(t *testing.T) {
	appErr := NewValidation("missing meal choice for Anna")
	require.Same(t, appErr, FromError(appErr))

	converted := FromError(stderrors.New("boom"))
	require.Equal(t, "INTERNAL_SERVER_ERROR", converted.Code)
	require.Equal(t, http.StatusInternalServerError, converted.StatusCode)
}

func TestGuestNotFoundHasNoInternalDetail(t *testing.T) {
	require.NotContains(t, ErrGuestNotFound.Message, "sql")
	require.NotContains(t, ErrGuestNotFound.Message, "table")
	require.Equal(t, http.StatusNotFound, ErrGuestNotFound.StatusCode)
}

func TestWithMessageCopies(t *testing.T) {
	err := ErrValidation.WithMessage("song request list is too long")
	require.Equal(t, ErrValidation.Code, err.Code)
	require.Equal(t, "song request list is too long", err.Message)
	require.Equal(t, "Invalid submission", ErrValidation.Message)
}
