package requests

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"labhive/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRespondDispatchErrorMessages(t *testing.T) {
	rec := httptest.NewRecorder()
	respondDispatchError(rec, &dispatch.AllRejectedError{Offers: 3})
	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "All collectors rejected the request", decodeBody(t, rec)["message"])

	// no offer was ever made, so "rejected" would be the wrong word
	rec = httptest.NewRecorder()
	respondDispatchError(rec, &dispatch.AllRejectedError{Offers: 0, Busy: 2})
	assert.Equal(t, 400, rec.Code)
	assert.Equal(t, "All collectors are busy right now, please try again", decodeBody(t, rec)["message"])

	rec = httptest.NewRecorder()
	respondDispatchError(rec, &dispatch.NoCollectorError{})
	assert.Equal(t, 404, rec.Code)

	rec = httptest.NewRecorder()
	respondDispatchError(rec, &dispatch.ValidationError{Field: "userId", Reason: "missing"})
	assert.Equal(t, 400, rec.Code)
}
