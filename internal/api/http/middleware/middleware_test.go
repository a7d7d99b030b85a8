package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
	"github.com/Alijeyrad/serviceflow_backend/pkg/reqctx"
)

type fakeSessions struct {
	live map[uuid.UUID]bool
	err  error
}

func (f *fakeSessions) Active(_ context.Context, id uuid.UUID) (bool, error) {
	return f.live[id], f.err
}

func newManager(t *testing.T) *pasetotoken.Manager {
	t.Helper()
	mgr, err := pasetotoken.New(pasetotoken.Config{
		Mode:     pasetotoken.ModeLocal,
		Issuer:   "serviceflow",
		Audience: "serviceflow-api",
	}, pasetotoken.NewLocalKeys())
	require.NoError(t, err)
	return mgr
}

func TestAuthRequired(t *testing.T) {
	mgr := newManager(t)
	user, business := uuid.New(), uuid.New()
	liveSession, deadSession := uuid.New(), uuid.New()
	sessions := &fakeSessions{live: map[uuid.UUID]bool{liveSession: true}}

	issue := func(sid *uuid.UUID) string {
		tok, err := mgr.IssueAccess(pasetotoken.Subject{UserID: user, BusinessID: business, SessionID: sid})
		require.NoError(t, err)
		return tok
	}
	refresh, err := mgr.IssueRefresh(pasetotoken.Subject{UserID: user})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", AuthRequired(mgr, sessions), func(c fiber.Ctx) error {
		owner, ok := reqctx.OwnerFromContext(c.Context())
		if !ok || owner != business {
			return fiber.ErrInternalServerError
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", 401},
		{"wrong scheme", "Basic abc", 401},
		{"garbage token", "Bearer abc", 401},
		{"refresh token", "Bearer " + refresh, 401},
		{"no session", "Bearer " + issue(nil), 204},
		{"live session", "Bearer " + issue(&liveSession), 204},
		{"revoked session", "Bearer " + issue(&deadSession), 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	t.Run("session store error", func(t *testing.T) {
		failing := fiber.New()
		failing.Get("/", AuthRequired(mgr, &fakeSessions{err: errors.New("redis down")}), func(c fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+issue(&liveSession))
		resp, err := failing.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/", func(c fiber.Ctx) error {
		rid, ok := RequestIDFromFiber(c)
		if !ok || rid != reqctx.RequestIDFromContext(c.Context()) {
			return fiber.ErrInternalServerError
		}
		return c.SendString(rid)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get(HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	_, err = uuid.Parse(resp.Header.Get(HeaderRequestID))
	assert.NoError(t, err, "generated request id is a uuid")
}

func TestRequirePermissionWithoutAuthorizer(t *testing.T) {
	app := fiber.New()
	app.Get("/open", RequirePermission(nil, "job", "read"), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/open", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode, "claims are still required")
}

func TestLimiter(t *testing.T) {
	app := fiber.New()
	app.Use(NewLimiter(nil, 2))
	app.Get("/", func(c fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode)
	}
	assert.Equal(t, []int{204, 204, 429}, codes)
}
