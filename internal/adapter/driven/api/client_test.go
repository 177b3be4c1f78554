package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/predictcr/internal/adapter/driven/api"
	"github.com/ericfisherdev/predictcr/internal/domain/model"
)

// fakeTokens is a mutable token source.
type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) set(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// faultRecorder records auth fault callbacks.
type faultRecorder struct {
	mu       sync.Mutex
	statuses []int
	tokens   []string
}

func (r *faultRecorder) handle(status int, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	r.tokens = append(r.tokens, token)
}

func (r *faultRecorder) faultTokens() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tokens...)
}

func (r *faultRecorder) calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.statuses...)
}

// recordingSaver captures SaveBytes calls.
type recordingSaver struct {
	mu    sync.Mutex
	saves []savedFile
	err   error
}

type savedFile struct {
	filename string
	data     []byte
}

func (s *recordingSaver) SaveBytes(_ context.Context, data []byte, filename string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves = append(s.saves, savedFile{filename: filename, data: append([]byte(nil), data...)})
	if s.err != nil {
		return "", s.err
	}
	return "/downloads/" + filename, nil
}

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler, tokens *fakeTokens, opts ...api.Option) *api.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := api.NewClientWithTransport(server.URL+"/api", tokens, server.Client().Transport, opts...)
	require.NoError(t, err)

	return client
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_RejectsRelativeBaseURL(t *testing.T) {
	_, err := api.NewClient("api/", &fakeTokens{})
	assert.Error(t, err)
}

func TestBearerHeader_ReadAtDispatchTime(t *testing.T) {
	var seen []string
	var mu sync.Mutex
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, model.Settings{ID: 1})
	})

	tokens := &fakeTokens{token: "first"}
	client := newTestClient(t, handler, tokens)

	_, err := client.FetchSettings(context.Background())
	require.NoError(t, err)

	tokens.set("second")
	_, err = client.FetchSettings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer first", "Bearer second"}, seen)
}

func TestBearerHeader_EmptyTokenStillSent(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header["Authorization"]
		assert.True(t, present)
		assert.Equal(t, "Bearer", strings.TrimSpace(r.Header.Get("Authorization")))
		writeJSON(w, http.StatusOK, []model.Sample{})
	})

	client := newTestClient(t, handler, &fakeTokens{})
	_, err := client.Samples(context.Background())
	require.NoError(t, err)
}

func TestRequestID_SetOnEveryRequest(t *testing.T) {
	ids := map[string]bool{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		assert.NotEmpty(t, id)
		ids[id] = true
		writeJSON(w, http.StatusOK, model.Settings{})
	})

	client := newTestClient(t, handler, &fakeTokens{token: "t"})
	for range 3 {
		_, err := client.FetchSettings(context.Background())
		require.NoError(t, err)
	}
	assert.Len(t, ids, 3)
}

func TestFaultDetector_StatusBoundary(t *testing.T) {
	tests := []struct {
		status   int
		teardown bool
	}{
		{http.StatusBadRequest, false},
		{http.StatusUnauthorized, true},
		{http.StatusForbidden, true},
		{http.StatusUnprocessableEntity, true},
		{http.StatusInternalServerError, true},
	}

	for _, tc := range tests {
		t.Run(strconv.Itoa(tc.status), func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, map[string]string{"message": "nope"})
			})

			faults := &faultRecorder{}
			client := newTestClient(t, handler, &fakeTokens{token: "abc"}, api.WithAuthFaultHandler(faults.handle))

			err := client.SaveSettings(context.Background(), model.Settings{ID: 1})
			require.Error(t, err)

			var se *api.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, "nope", se.Message)
			assert.Equal(t, tc.teardown, api.IsAuthFault(err))

			if tc.teardown {
				assert.Equal(t, []int{tc.status}, faults.calls())
			} else {
				assert.Empty(t, faults.calls())
			}
		})
	}
}

func TestFaultDetector_StatusBelowBoundaryIsSuccess(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(399)
	})

	faults := &faultRecorder{}
	client := newTestClient(t, handler, &fakeTokens{token: "abc"}, api.WithAuthFaultHandler(faults.handle))

	require.NoError(t, client.SaveSettings(context.Background(), model.Settings{ID: 1}))
	assert.Empty(t, faults.calls())
}

func TestFaultDetector_NetworkFailureNoTeardown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	faults := &faultRecorder{}
	client, err := api.NewClientWithTransport(url, &fakeTokens{token: "abc"}, nil, api.WithAuthFaultHandler(faults.handle))
	require.NoError(t, err)

	_, err = client.FetchSettings(context.Background())
	require.Error(t, err)
	assert.False(t, api.IsAuthFault(err))

	var se *api.StatusError
	assert.False(t, errors.As(err, &se))
	assert.Empty(t, faults.calls())
}

func TestFaultDetector_PlainTextErrorBody(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded\nstack...", http.StatusBadGateway)
	})

	client := newTestClient(t, handler, &fakeTokens{})
	_, err := client.Samples(context.Background())

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "gateway exploded", se.Message)
	assert.Equal(t, "samples", se.Endpoint)
}

func TestFetchSettings_ForbiddenTriggersTeardown(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/settings", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
	})

	tokens := &fakeTokens{token: "abc"}
	client := newTestClient(t, handler, tokens, api.WithAuthFaultHandler(func(int, string) { tokens.set("") }))

	_, err := client.FetchSettings(context.Background())
	require.Error(t, err)
	assert.Equal(t, "", tokens.Token())
}

func TestFetchSettings_DecodesRecord(t *testing.T) {
	want := model.Settings{
		ID:                             1,
		DefaultPersonalSubmissionQuota: 10,
		GlobalQuota:                    1000,
		TumorTypes:                     "Lung;Breast",
		Sources:                        "TIL;PBMC",
		CSVRequiredColumns:             "barcode;cdr3",
		RunnerJobTimeoutMins:           60,
		MaxFilesizeH5MB:                50,
		MaxFilesizeCSVMB:               10,
		AboutMD:                        "# About",
		NewsItems:                      "[]",
	}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, want)
	})

	client := newTestClient(t, handler, &fakeTokens{})
	got, err := client.FetchSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSaveSettings_PostsFullRecord(t *testing.T) {
	record := model.Settings{ID: 1, GlobalQuota: 5, TumorTypes: "Lung"}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/admin/settings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var got model.Settings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, record, got)
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, handler, &fakeTokens{token: "admin"})
	require.NoError(t, client.SaveSettings(context.Background(), record))
}

func TestWithContentType_UsedForJSONBodies(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json; charset=utf-8", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	})

	client := newTestClient(t, handler, &fakeTokens{}, api.WithContentType("application/json; charset=utf-8"))
	require.NoError(t, client.SaveSettings(context.Background(), model.Settings{}))
}

func TestLogin_ReturnsSession(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"email":"a@b.com","password":"Secret123"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]any{
			"user":         map[string]any{"id": 3, "email": "a@b.com", "is_admin": true},
			"access_token": "jwt-token",
		})
	})

	client := newTestClient(t, handler, &fakeTokens{})
	session, err := client.Login(context.Background(), "a@b.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", session.Token)
	require.NotNil(t, session.User)
	assert.Equal(t, int64(3), session.User.ID)
	assert.True(t, session.IsAdmin())
}

func TestLogin_WrongPasswordIsApplicationFault(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Incorrect password"})
	})

	faults := &faultRecorder{}
	client := newTestClient(t, handler, &fakeTokens{}, api.WithAuthFaultHandler(faults.handle))

	_, err := client.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect password")
	assert.Empty(t, faults.calls())
}

func TestActivateAccount_UsesTokenPath(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/activate/ImFAYi5jb20i.ZxY.abc-_1", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Account a@b.com activated"})
	})

	client := newTestClient(t, handler, &fakeTokens{})
	msg, err := client.ActivateAccount(context.Background(), "ImFAYi5jb20i.ZxY.abc-_1")

	require.NoError(t, err)
	assert.Equal(t, "Account a@b.com activated", msg)
}

func TestActivateAccount_InvalidLinkIsApplicationFault(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Invalid or expired activation link"})
	})

	faults := &faultRecorder{}
	client := newTestClient(t, handler, &fakeTokens{}, api.WithAuthFaultHandler(faults.handle))
	_, err := client.ActivateAccount(context.Background(), "expired")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid or expired activation link")
	assert.Empty(t, faults.calls())
}

func TestAdminUsers_DecodesList(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/users", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"users": []map[string]any{{"id": 2, "email": "x@y.de", "enabled": true}},
		})
	})

	client := newTestClient(t, handler, &fakeTokens{token: "admin"})
	users, err := client.AdminUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "x@y.de", users[0].Email)
	assert.True(t, users[0].Enabled)
}

func TestEnableUser_PostsEmail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/enable_user", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"user_email":"x@y.de"}`, string(body))
		writeJSON(w, http.StatusOK, map[string]string{"message": "User x@y.de enabled"})
	})

	client := newTestClient(t, handler, &fakeTokens{token: "admin"})
	msg, err := client.EnableUser(context.Background(), "x@y.de")
	require.NoError(t, err)
	assert.Equal(t, "User x@y.de enabled", msg)
}
