package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newArborist(t *testing.T, status int, allow bool) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/auth/request", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req authRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "tok", req.User.Token)
		require.Len(t, req.Requests, 1)
		require.Equal(t, "/services/audit/login", req.Requests[0].Resource)
		require.Equal(t, policyAction{Service: "audit", Method: "read"}, req.Requests[0].Action)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(authResponse{Auth: allow})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Authorize(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		allow   bool
		wantErr error
	}{
		{name: "allowed", status: http.StatusOK, allow: true},
		{name: "denied", status: http.StatusOK, allow: false, wantErr: ErrForbidden},
		{name: "server error", status: http.StatusInternalServerError, wantErr: ErrPolicyUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newArborist(t, tc.status, tc.allow)
			client := NewClient(srv.URL+"/", time.Second, 0)

			err := client.Authorize(context.Background(), "tok", MethodRead, Resource("login"))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := NewClient(url, time.Second, 0).Authorize(context.Background(), "tok", MethodRead, Resource("login"))
	require.ErrorIs(t, err, ErrPolicyUnavailable)
}

func TestClient_CachesPositiveDecisions(t *testing.T) {
	srv, calls := newArborist(t, http.StatusOK, true)
	client := NewClient(srv.URL, time.Second, time.Minute)

	for i := 0; i < 3; i++ {
		require.NoError(t, client.Authorize(context.Background(), "tok", MethodRead, Resource("login")))
	}
	require.Equal(t, int32(1), calls.Load())
}

func TestClient_DoesNotCacheDenials(t *testing.T) {
	srv, calls := newArborist(t, http.StatusOK, false)
	client := NewClient(srv.URL, time.Second, time.Minute)

	for i := 0; i < 2; i++ {
		require.ErrorIs(t, client.Authorize(context.Background(), "tok", MethodRead, Resource("login")), ErrForbidden)
	}
	require.Equal(t, int32(2), calls.Load())
}
