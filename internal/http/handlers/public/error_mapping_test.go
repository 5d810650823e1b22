package public

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bazaar-next/internal/http/response"
	"github.com/bazaar-next/internal/service"

	"github.com/gin-gonic/gin"
)

func recordPromoValidateError(t *testing.T, err error) response.Response {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/promos/validate", nil)

	respondPromoValidateError(c, err)

	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v", err)
	}
	return resp
}

func TestPromoValidateErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not_found", service.ErrPromoNotFound, response.CodeNotFound},
		{"expired", service.ErrPromoExpired, response.CodeBadRequest},
		{"inactive", service.ErrPromoInactive, response.CodeBadRequest},
		{"usage_limit", service.ErrPromoUsageLimit, response.CodeBadRequest},
		{"no_eligible_items", service.ErrPromoNoEligibleItems, response.CodeBadRequest},
		{"unexpected", errors.New("db gone"), response.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := recordPromoValidateError(t, tc.err)
			if resp.StatusCode != tc.code {
				t.Fatalf("status_code want %d got %d", tc.code, resp.StatusCode)
			}
			if resp.Msg == "" {
				t.Fatal("msg should not be empty")
			}
		})
	}
}

func TestPromoValidateErrorMappingWrappedError(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), service.ErrPromoExpired)
	resp := recordPromoValidateError(t, wrapped)
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("wrapped error status_code want %d got %d", response.CodeBadRequest, resp.StatusCode)
	}
}
