package common

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type errorEnvelope struct {
	Error ErrorBody `json:"error"`
}

func TestWriteErrorAppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := Conflict("INSUFFICIENT_STOCK", "not enough").WithDetails(map[string]int{"available": 1})
	WriteError(rec, req, err)

	require.Equal(t, http.StatusConflict, rec.Code)
	var body errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "INSUFFICIENT_STOCK", body.Error.Code)
	require.NotNil(t, body.Error.Details)
}

func TestWriteErrorHidesUnknownCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("pq: connection refused"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Quantity int `json:"quantity"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":2,"price":1}`))
	err := DecodeJSON(req, &dst)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestRequireUserID(t *testing.T) {
	_, err := RequireUserID(WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), ""))
	require.Error(t, err)
	id, err := RequireUserID(WithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "u-1"))
	require.NoError(t, err)
	require.Equal(t, "u-1", id)
}

func TestParsePaginationCaps(t *testing.T) {
	p := ParsePagination(httptest.NewRequest(http.MethodGet, "/?page=3&limit=1000", nil), 20)
	require.Equal(t, 3, p.Page)
	require.Equal(t, MaxPerPage, p.PerPage)
	require.Equal(t, 200, p.Offset())
}
