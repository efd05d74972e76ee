package errutil

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseErrorKeepsCauseOutOfJSON(t *testing.T) {
	cause := errors.New("cipher: message authentication failed")
	err := BadRequest("invalid request", cause)

	var base BaseError
	require.True(t, errors.As(err, &base))
	require.ErrorIs(t, err, cause)
	require.Equal(t, http.StatusBadRequest, base.Code.HTTPStatus())

	body := base.JSON().(map[string]interface{})
	require.Equal(t, false, body["status"])
	inner := body["error"].(map[string]interface{})
	require.Equal(t, "invalid request", inner["message"])
	require.NotContains(t, inner, "details")
}

func TestCoreStatusHTTPStatus(t *testing.T) {
	cases := map[CoreStatus]int{
		StatusBadRequest:         http.StatusBadRequest,
		StatusTooManyRequests:    http.StatusTooManyRequests,
		StatusServiceUnavailable: http.StatusServiceUnavailable,
		StatusInternal:           http.StatusInternalServerError,
		StatusUnknown:            http.StatusInternalServerError,
	}
	for status, want := range cases {
		require.Equal(t, want, status.HTTPStatus(), string(status))
	}
}
