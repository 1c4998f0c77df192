package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type placeRequest struct {
	PlaceID string `json:"place_id" binding:"required"`
	ZIPCode string `json:"zip,omitempty" binding:"omitempty,len=5"`
}

func TestValidationDetailsUseJSONNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	useJSONFieldNames()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"zip":"123"}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var req placeRequest
	err := c.ShouldBindJSON(&req)
	require.Error(t, err)
	respondValidationError(c, "validation failed", err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}
	decode(t, w, &body)
	assert.Equal(t, "validation failed", body.Error)
	assert.ElementsMatch(t, []string{"place_id is required", "zip is invalid"}, body.Details)
}
