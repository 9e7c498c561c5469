package errors

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeToStatus(t *testing.T) {
	tests := map[int]int{
		CodeOK:            http.StatusOK,
		CodeInvalidParams: http.StatusBadRequest,
		CodeForbidden:     http.StatusForbidden,
		CodeNotFound:      http.StatusNotFound,
		CodeRateLimited:   http.StatusTooManyRequests,
		CodeInternalError: http.StatusInternalServerError,
		CodeUnavailable:   http.StatusServiceUnavailable,
		40077:             http.StatusBadRequest,
		50077:             http.StatusInternalServerError,
	}
	for code, status := range tests {
		assert.Equal(t, status, CodeToStatus(code), "code %d", code)
	}
}
