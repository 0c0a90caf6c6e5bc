package client_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/celerix-dev/celerix-build/internal/api"
	"github.com/celerix-dev/celerix-build/internal/engine"
	"github.com/celerix-dev/celerix-build/internal/service"
	"github.com/celerix-dev/celerix-build/pkg/client"
	"github.com/celerix-dev/celerix-build/pkg/schema"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	manager = schema.Actor{ID: "u-pm", Name: "Pat Manager", Role: schema.RoleProjectManager}
	viewer  = schema.Actor{ID: "u-view", Role: schema.RoleViewer}
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func startDaemon(t *testing.T) (*httptest.Server, *service.Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.New(engine.NewMemStore(nil, nil), service.Options{Logger: quiet()})
	require.NoError(t, svc.Init(context.Background(), false))
	srv := httptest.NewServer(api.NewRouter(svc, quiet()))
	t.Cleanup(srv.Close)
	return srv, svc
}

func TestClient_Integration(t *testing.T) {
	srv, svc := startDaemon(t)
	ctx := context.Background()

	p, err := svc.Projects.Create(ctx, manager, service.ProjectInput{Name: ptr("Harbour Office"), Budget: ptr(decimal.NewFromInt(20000))})
	require.NoError(t, err)
	m, err := svc.Materials.Create(ctx, manager, service.MaterialInput{
		ProjectID:      ptr(p.ID),
		Name:           ptr("Glass panels"),
		UnitCost:       ptr(decimal.NewFromInt(300)),
		QuantityNeeded: ptr(12.0),
	})
	require.NoError(t, err)
	_, err = svc.Materials.Submit(ctx, manager, m.ID, "")
	require.NoError(t, err)

	c := client.New(srv.URL+"/", manager, client.WithLogger(quiet()))
	require.NoError(t, c.Ping(ctx))

	projects, err := c.ListProjects(ctx, "", client.PageQuery{Limit: 5})
	require.NoError(t, err)
	require.Len(t, projects.Items, 1)
	assert.Equal(t, "Harbour Office", projects.Items[0].Name)
	assert.Equal(t, 1, projects.Pagination.Total)
	assert.Equal(t, 5, projects.Pagination.Limit)

	materials, err := c.ListMaterials(ctx, client.MaterialQuery{ProjectID: p.ID, Status: schema.MaterialPendingApproval})
	require.NoError(t, err)
	require.Len(t, materials.Items, 1)

	approved, err := c.ApproveMaterial(ctx, m.ID, "ok")
	require.NoError(t, err)
	assert.Equal(t, schema.MaterialApproved, approved.Status)

	_, err = c.RejectMaterial(ctx, m.ID, "changed mind")
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)

	portfolio, err := c.Portfolio(ctx)
	require.NoError(t, err)
	require.Len(t, portfolio.Projects, 1)
	assert.Equal(t, 0, portfolio.PendingApprovals.Materials)

	_, err = c.TrackPurchaseOrder(ctx, "missing")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClient_Forbidden(t *testing.T) {
	srv, _ := startDaemon(t)
	c := client.New(srv.URL, viewer, client.WithLogger(quiet()))

	_, err := c.Portfolio(context.Background())
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, api.CodeForbidden, apiErr.Code)
}

func TestClient_RetryLogic(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"data":{"status":"ok"}}`)
	}))
	defer srv.Close()

	c := client.New(srv.URL, viewer, client.WithBackoff(time.Millisecond), client.WithLogger(quiet()))
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success":false,"error":"internal_error","message":"boom"}`)
	}))
	defer srv.Close()

	c := client.New(srv.URL, viewer, client.WithBackoff(time.Millisecond), client.WithLogger(quiet()))
	err := c.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "boom", apiErr.Message)
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"success":false,"error":"validation_error","message":"bad","field":"reason"}`)
	}))
	defer srv.Close()

	c := client.New(srv.URL, manager, client.WithBackoff(time.Millisecond), client.WithLogger(quiet()))
	_, err := c.RejectMaterial(context.Background(), "m1", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Contains(t, err.Error(), "reason")
}

func TestClient_NoRetryOfActionOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := client.New(srv.URL, manager, client.WithBackoff(time.Millisecond), client.WithLogger(quiet()))
	_, err := c.ApproveMaterial(context.Background(), "m1", "")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.Status)
}

func TestClient_RetriesActionThatWasNeverSent(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := client.New(addr, manager, client.WithBackoff(time.Millisecond), client.WithLogger(quiet()))
	_, err := c.ApproveMaterial(context.Background(), "m1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}
