// Warden - Role-Based Access Control Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	json "github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/warden/internal/auth"
	"github.com/tomtom215/warden/internal/authz"
	"github.com/tomtom215/warden/internal/config"
	"github.com/tomtom215/warden/internal/directory"
	"github.com/tomtom215/warden/internal/history"
	"github.com/tomtom215/warden/internal/models"
	"github.com/tomtom215/warden/internal/notify"
)

const (
	testTopic    = "warden.test.changes"
	testPassword = "Correct-h0rse-battery"
)

// testEnv is a full HTTP stack over an in-memory directory and a running
// authorization actor.
type testEnv struct {
	store   *directory.MemoryStore
	handle  authz.Handle
	jwt     *auth.JWTManager
	handler *Handler
	server  http.Handler

	historyStore *history.MemoryStore
	recorder     *history.Recorder

	mu     sync.Mutex
	events []notify.ChangeEvent
}

func seedTestDirectory(t *testing.T, store *directory.MemoryStore) {
	t.Helper()
	ctx := context.Background()

	roles := []models.Role{
		{Name: "admin", Permissions: []models.PermissionRule{
			{Method: "*", Path: "/api/v1/*"},
		}},
		{Name: "checker", Permissions: []models.PermissionRule{
			{Method: "POST", Path: "/api/v1/authz/check"},
		}},
		{Name: "viewer", Permissions: []models.PermissionRule{
			{Method: "GET", Path: "/api/v1/roles"},
			{Method: "GET", Path: "/api/v1/roles/:name"},
		}},
	}
	for _, role := range roles {
		if err := store.UpsertRole(ctx, role); err != nil {
			t.Fatalf("UpsertRole(%s): %v", role.Name, err)
		}
	}

	hash, err := auth.HashPassword(testPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	users := []models.User{
		{Account: "root", RoleName: "admin", PasswordHash: hash},
		{Account: "svc", RoleName: "checker", PasswordHash: hash},
		{Account: "vera", RoleName: "viewer", PasswordHash: hash},
		{Account: "nopass", RoleName: "viewer"},
	}
	for _, user := range users {
		if err := store.UpsertUser(ctx, user); err != nil {
			t.Fatalf("UpsertUser(%s): %v", user.Account, err)
		}
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := directory.NewMemoryStore()
	seedTestDirectory(t, store)

	ctx, cancel := context.WithCancel(context.Background())

	historyStore := history.NewMemoryStore(100)
	recorder := history.NewRecorder(historyStore, history.DefaultConfig())

	enforcerCfg := authz.DefaultEnforcerConfig()
	enforcerCfg.Observer = recorder
	enforcer, err := authz.NewEnforcer(ctx, store, store, enforcerCfg)
	if err != nil {
		cancel()
		_ = recorder.Close()
		t.Fatalf("NewEnforcer: %v", err)
	}
	actor := authz.NewActor(enforcer, authz.DefaultActorConfig())
	actorDone := make(chan error, 1)
	go func() { actorDone <- actor.Serve(ctx) }()

	transport := notify.NewGoChannelTransport(watermill.NopLogger{})
	messages, err := transport.Subscriber.Subscribe(ctx, testTopic)
	if err != nil {
		cancel()
		t.Fatalf("Subscribe: %v", err)
	}

	jwtManager, err := auth.NewJWTManager(&config.SecurityConfig{
		JWTSecret: "test-secret-that-is-long-enough-for-hs256",
		TokenTTL:  time.Hour,
	})
	if err != nil {
		cancel()
		t.Fatalf("NewJWTManager: %v", err)
	}

	env := &testEnv{
		store:        store,
		handle:       actor.Handle(),
		jwt:          jwtManager,
		historyStore: historyStore,
		recorder:     recorder,
	}

	handler, err := NewHandler(HandlerConfig{
		Store:          store,
		Authz:          env.handle,
		Tokens:         jwtManager,
		Publisher:      notify.NewPublisher(transport.Publisher, testTopic, "test-instance"),
		History:        recorder,
		PasswordPolicy: config.DefaultPasswordPolicy(),
		BcryptCost:     bcrypt.MinCost,
		Version:        "test",
	})
	if err != nil {
		cancel()
		_ = recorder.Close()
		t.Fatalf("NewHandler: %v", err)
	}
	env.handler = handler

	chiCfg := DefaultChiMiddlewareConfig()
	chiCfg.RateLimitDisabled = true
	env.server = NewRouter(handler, jwtManager, env.handle, NewChiMiddleware(chiCfg)).SetupChi()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for msg := range messages {
			event, err := notify.UnmarshalChangeEvent(msg.Payload)
			if err == nil {
				env.mu.Lock()
				env.events = append(env.events, *event)
				env.mu.Unlock()
			}
			msg.Ack()
		}
	}()

	t.Cleanup(func() {
		cancel()
		_ = recorder.Close()
		_ = transport.Close()
		<-collected
		select {
		case <-actorDone:
		case <-time.After(5 * time.Second):
			t.Error("actor did not stop")
		}
	})
	return env
}

func (e *testEnv) token(t *testing.T, account string) string {
	t.Helper()
	token, _, err := e.jwt.GenerateToken(account)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

// do sends a request as account. An empty account sends no token.
func (e *testEnv) do(t *testing.T, account, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if account != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(t, account))
	}
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) publishedEvents() []notify.ChangeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notify.ChangeEvent(nil), e.events...)
}

type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

// decodeResponse checks the status code and unmarshals the envelope's data
// into dst when dst is non-nil.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int, dst interface{}) envelope {
	t.Helper()
	if rec.Code != wantStatus {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, wantStatus, rec.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v; body = %s", err, rec.Body.String())
	}
	if dst != nil {
		if err := json.Unmarshal(env.Data, dst); err != nil {
			t.Fatalf("decode data: %v; data = %s", err, env.Data)
		}
	}
	return env
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder, wantStatus int) string {
	t.Helper()
	env := decodeResponse(t, rec, wantStatus, nil)
	if env.Error == nil {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}
	return env.Error.Code
}

func httptestRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func httptestGet(h http.Handler, target string) *httptest.ResponseRecorder {
	return serve(h, httptest.NewRequest(http.MethodGet, target, nil))
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// historyEntries waits until the store holds at least n entries and
// returns them, newest first.
func (e *testEnv) historyEntries(t *testing.T, n int) []history.Entry {
	t.Helper()
	var entries []history.Entry
	waitFor(t, "history entries", func() bool {
		var err error
		entries, err = e.historyStore.Query(context.Background(), history.QueryFilter{})
		return err == nil && len(entries) >= n
	})
	return entries
}
