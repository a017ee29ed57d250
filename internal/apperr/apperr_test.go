// internal/apperr/apperr_test.go
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUnwrapsChain(t *testing.T) {
	base := NotFound("NO_EVENT", "event not found")
	wrapped := fmt.Errorf("handling request: %w", base)

	appErr := From(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, "NO_EVENT", appErr.Code)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestFromPlainError(t *testing.T) {
	assert.Nil(t, From(errors.New("boom")))
	assert.Nil(t, From(nil))
}

func TestNewf(t *testing.T) {
	err := Newf("HAS_REGISTRATIONS", http.StatusConflict, "cannot delete event: %d registration(s) found", 3)
	assert.Equal(t, "cannot delete event: 3 registration(s) found", err.Error())
	assert.Equal(t, http.StatusConflict, err.Status)
}
