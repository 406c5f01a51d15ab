package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/oakmart/oakmart-backend/internal/pkg/errors"
	"github.com/oakmart/oakmart-backend/internal/platform/apierr"
)

func TestRespondServiceErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("set x: %w", pkgerrors.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("slug y: %w", pkgerrors.ErrSlugTaken), http.StatusUnprocessableEntity, "slug_taken"},
		{fmt.Errorf("bad input: %w", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{pkgerrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{fmt.Errorf("boom"), http.StatusInternalServerError, "internal_error"},
		{apierr.New(http.StatusConflict, "already_exists", fmt.Errorf("dup")), http.StatusConflict, "already_exists"},
		{fmt.Errorf("update: %w", apierr.New(http.StatusUnprocessableEntity, "slug_taken", pkgerrors.ErrSlugTaken)), http.StatusUnprocessableEntity, "slug_taken"},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)

		RespondServiceError(c, tc.err)

		if rec.Code != tc.wantStatus {
			t.Fatalf("%v: status want=%d got=%d", tc.err, tc.wantStatus, rec.Code)
		}
		var envelope ErrorEnvelope
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if envelope.Error.Code != tc.wantCode {
			t.Fatalf("%v: code want=%q got=%q", tc.err, tc.wantCode, envelope.Error.Code)
		}
	}
}
