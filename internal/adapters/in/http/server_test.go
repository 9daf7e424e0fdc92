package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// The role gate rejects before any handler dependency is touched, so a bare
// Server is enough here.
func newGateEcho() *echo.Echo {
	e := echo.New()
	(&Server{}).RegisterRoutes(e)
	return e
}

func doPost(e *echo.Echo, path, actorID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if actorID != "" {
		req.Header.Set(HeaderActorID, actorID)
	}
	if role != "" {
		req.Header.Set(HeaderActorRole, role)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_OfferAndLifecycleEndpoints_RequireAgentRole(t *testing.T) {
	e := newGateEcho()
	orderID := kernel.NewUUID().String()
	actorID := kernel.NewUUID().String()

	tests := []struct {
		name string
		path string
	}{
		{name: "accept", path: "/api/v1/orders/" + orderID + "/accept"},
		{name: "reject", path: "/api/v1/orders/" + orderID + "/reject"},
		{name: "advance", path: "/api/v1/orders/" + orderID + "/advance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doPost(e, tt.path, actorID, "partner")
			assert.Equal(t, http.StatusForbidden, rec.Code)

			rec = doPost(e, tt.path, actorID, "admin")
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestServer_AcceptOffer_RejectsMissingIdentity(t *testing.T) {
	e := newGateEcho()
	path := "/api/v1/orders/" + kernel.NewUUID().String() + "/accept"

	rec := doPost(e, path, "", "agent")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doPost(e, path, kernel.NewUUID().String(), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
