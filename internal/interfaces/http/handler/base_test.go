package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	analyticsapp "github.com/sellstream/backend/internal/application/analytics"
	"github.com/sellstream/backend/tests/testutil"
)

func TestBaseHandler_HandleError(t *testing.T) {
	var h BaseHandler

	t.Run("nil error writes nothing", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		h.HandleError(tc.Context, nil)
		assert.Empty(t, tc.ResponseBody())
	})

	t.Run("invalid period maps to 400", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		h.HandleError(tc.Context, fmt.Errorf("%w: %q", analyticsapp.ErrInvalidPeriod, "hourly"))

		assert.Equal(t, http.StatusBadRequest, tc.ResponseCode())
		testutil.AssertErrorResponse(t, tc, "ERR_INVALID_PERIOD")
	})

	t.Run("unknown error maps to 500", func(t *testing.T) {
		tc := testutil.NewTestContext(t)
		h.HandleError(tc.Context, errors.New("boom"))

		assert.Equal(t, http.StatusInternalServerError, tc.ResponseCode())
		testutil.AssertErrorResponse(t, tc, "ERR_INTERNAL")
	})
}

func TestBaseHandler_Success(t *testing.T) {
	var h BaseHandler

	tc := testutil.NewTestContext(t)
	h.Success(tc.Context, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, tc.ResponseCode())
	testutil.AssertSuccessResponse(t, tc)
}

func TestBaseHandler_ErrorIncludesRequestID(t *testing.T) {
	var h BaseHandler

	tc := testutil.NewTestContext(t)
	tc.Context.Set("request_id", "req-42")
	h.BadRequest(tc.Context, "bad input")

	assert.Equal(t, http.StatusBadRequest, tc.ResponseCode())
	resp := testutil.JSONResponse(t, tc)
	errMap := resp["error"].(map[string]interface{})
	assert.Equal(t, "req-42", errMap["request_id"])
}
