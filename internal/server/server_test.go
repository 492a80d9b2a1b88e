package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httperr "github.com/audit-lab/audit-service/internal/core/errors"
	"github.com/audit-lab/audit-service/internal/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type fakeHealth struct {
	err error
}

func (f fakeHealth) Ping(ctx context.Context) error {
	return f.err
}

func serve(s *Server, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)
	return resp
}

func TestServer_Status(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{name: "root healthy", path: "/", wantStatus: http.StatusOK, wantBody: `{"status":"OK"}`},
		{name: "status healthy", path: "/_status", wantStatus: http.StatusOK, wantBody: `{"status":"OK"}`},
		{
			name:       "database down",
			path:       "/_status",
			pingErr:    errors.New("dial tcp: connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"error_type":"` + httperr.HttpUnavailableError + `","message":"database unreachable"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := New(":0", fakeHealth{err: tc.pingErr}, Options{})

			resp := serve(s, http.MethodGet, tc.path, nil)
			require.Equal(t, tc.wantStatus, resp.Code)
			require.JSONEq(t, tc.wantBody, resp.Body.String())
		})
	}
}

func TestServer_Version(t *testing.T) {
	s := New(":0", fakeHealth{}, Options{Version: "1.4.2"})

	resp := serve(s, http.MethodGet, "/_version", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.JSONEq(t, `{"version":"1.4.2"}`, resp.Body.String())
}

func TestServer_MetricsEndpoint(t *testing.T) {
	disabled := New(":0", fakeHealth{}, Options{})
	require.Equal(t, http.StatusNotFound, serve(disabled, http.MethodGet, "/metrics", nil).Code)

	s := New(":0", fakeHealth{}, Options{MetricsEnabled: true})
	serve(s, http.MethodGet, "/_version", nil)

	resp := serve(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "http_requests_total")
}

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics())
	r.GET("/log/:category", func(c *gin.Context) { c.Status(http.StatusOK) })

	counter := telemetry.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/log/:category", "200")
	missing := telemetry.HTTPRequestsTotal.WithLabelValues(http.MethodGet, noRoute, "404")
	beforeHit, beforeMiss := testutil.ToFloat64(counter), testutil.ToFloat64(missing)

	for _, target := range []string{"/log/login", "/log/presigned_url", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	require.Equal(t, beforeHit+2, testutil.ToFloat64(counter))
	require.Equal(t, beforeMiss+1, testutil.ToFloat64(missing))
}

func TestRequestID(t *testing.T) {
	s := New(":0", fakeHealth{}, Options{})

	generated := serve(s, http.MethodGet, "/_version", nil).Header().Get(RequestIDHeader)
	require.Len(t, generated, 36)

	propagated := serve(s, http.MethodGet, "/_version", http.Header{RequestIDHeader: []string{"upstream-1"}})
	require.Equal(t, "upstream-1", propagated.Header().Get(RequestIDHeader))
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s := New("127.0.0.1:0", fakeHealth{}, Options{ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNew_PanicsWithoutHealthChecker(t *testing.T) {
	require.Panics(t, func() { New(":0", nil, Options{}) })
}
