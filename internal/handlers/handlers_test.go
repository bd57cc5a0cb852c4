package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/arafatr/linkup/backend/internal/middleware"
	"github.com/arafatr/linkup/backend/internal/ws"
	"github.com/arafatr/linkup/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// newTestContext builds an echo.Context the way the JWT middleware would have
// left it, with the caller's id already set. Path params are set by the test.
func newTestContext(t *testing.T, method, target string, body interface{}, userID primitive.ObjectID) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	e := echo.New()
	e.Validator = validators.NewValidator()
	c := e.NewContext(req, rec)
	c.Set(middleware.ContextUserID, userID)
	return c, rec
}

// httpCode unwraps the status code of an *echo.HTTPError returned by a handler.
func httpCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	return he.Code
}

// newTestHub returns a hub whose Redis client points nowhere, so publishes
// fail quietly and local delivery still works.
func newTestHub(presence ws.PresenceStore) *ws.Hub {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return ws.NewHub(client, presence)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
}
