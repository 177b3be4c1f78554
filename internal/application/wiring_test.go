package application_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/predictcr/internal/adapter/driven/api"
	"github.com/ericfisherdev/predictcr/internal/application"
	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// newWiredClient builds a session manager and an API client the way the
// command-line client does.
func newWiredClient(t *testing.T, handler http.Handler) (*application.SessionManager, *api.Client) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sessions := application.NewSessionManager(newMockCredentialStore(), nil)
	client, err := api.NewClientWithTransport(server.URL+"/api", sessions, server.Client().Transport,
		api.WithAuthFaultHandler(sessions.HandleAuthFault),
	)
	require.NoError(t, err)
	return sessions, client
}

func TestWiring_ForbiddenSettingsFetchEndsSession(t *testing.T) {
	sessions, client := newWiredClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
	}))
	require.NoError(t, sessions.Establish(context.Background(), model.Session{
		Token: "abc",
		User:  &model.User{Email: "user@abc.xy"},
	}))

	mirror := application.NewSettingsMirror(client, sessions, nil)
	_, err := mirror.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, "", sessions.Token())
	assert.Nil(t, sessions.User())
}

func TestWiring_SaveStatusBoundary(t *testing.T) {
	tests := []struct {
		status        int
		wantErr       bool
		wantAuthFault bool
		wantSession   bool
	}{
		{status: http.StatusUnauthorized, wantErr: true, wantAuthFault: true, wantSession: false},
		{status: http.StatusBadRequest, wantErr: true, wantAuthFault: false, wantSession: true},
		{status: 399, wantErr: false, wantAuthFault: false, wantSession: true},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			sessions, client := newWiredClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			require.NoError(t, sessions.Establish(context.Background(), adminSession()))

			mirror := application.NewSettingsMirror(client, sessions, nil)
			err := mirror.Save(context.Background(), model.Settings{ID: 1})

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantAuthFault, api.IsAuthFault(err))
			assert.Equal(t, tt.wantSession, sessions.Authenticated())
		})
	}
}

func TestWiring_CachedResponseNotServedToNextSession(t *testing.T) {
	var hits atomic.Int32
	sessions, client := newWiredClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer alice" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte(`[{"id":1,"name":"alice-secret"}]`))
	}))
	ctx := context.Background()

	require.NoError(t, sessions.Establish(ctx, model.Session{Token: "alice", User: &model.User{Email: "alice@abc.xy"}}))
	_, err := client.Samples(ctx)
	require.NoError(t, err)

	sessions.Teardown()
	require.NoError(t, sessions.Establish(ctx, model.Session{Token: "bob", User: &model.User{Email: "bob@abc.xy"}}))

	samples, err := client.Samples(ctx)

	require.Error(t, err)
	assert.Empty(t, samples)
	assert.Equal(t, int32(2), hits.Load())
	assert.False(t, sessions.Authenticated())
}

func TestWiring_LateRejectionOfOldTokenKeepsNewSession(t *testing.T) {
	inFlight := make(chan struct{})
	release := make(chan struct{})
	sessions, client := newWiredClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(inFlight)
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	ctx := context.Background()
	require.NoError(t, sessions.Establish(ctx, model.Session{Token: "old", User: &model.User{Email: "user@abc.xy"}}))

	done := make(chan error, 1)
	go func() {
		_, err := client.FetchSettings(ctx)
		done <- err
	}()

	<-inFlight
	require.NoError(t, sessions.Establish(ctx, model.Session{Token: "new", User: &model.User{Email: "user@abc.xy"}}))
	close(release)

	err := <-done
	require.Error(t, err)
	assert.True(t, api.IsAuthFault(err))
	assert.Equal(t, "new", sessions.Token())
	assert.True(t, sessions.Authenticated())
}

func TestWiring_LoginThenBearerOnNextRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":         map[string]any{"id": 3, "email": "user@abc.xy"},
			"access_token": "fresh-token",
		})
	})
	mux.HandleFunc("GET /api/samples", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fresh-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})

	sessions, client := newWiredClient(t, mux)
	auth := application.NewAuthService(client, sessions, nil)

	_, err := auth.Login(context.Background(), "user@abc.xy", "Secret123")
	require.NoError(t, err)

	samples, err := client.Samples(context.Background())
	require.NoError(t, err)
	assert.Empty(t, samples)
}
