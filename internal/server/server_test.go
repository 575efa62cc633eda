// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/topnotch-tui/internal/clock"
	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/session"
	"github.com/jeranaias/topnotch-tui/internal/storage"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// gatedGenerator blocks each call until release is closed.
type gatedGenerator struct {
	reply   string
	err     error
	started chan struct{}
	release chan struct{}
}

func (g *gatedGenerator) Generate(ctx context.Context, _ string) (string, error) {
	if g.started != nil {
		g.started <- struct{}{}
	}
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return g.reply, g.err
}

type fixture struct {
	sess *session.Session
	gen  *gatedGenerator
	srv  *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{gen: &gatedGenerator{reply: "pong"}}
	f.sess = session.New(session.Options{
		Store:     storage.NewConversationStore(),
		Generator: f.gen,
		Clock:     clock.NewFake(time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)),
		Logger:    zerolog.Nop(),
	})
	t.Cleanup(f.sess.Close)
	f.srv = New(f.sess, zerolog.Nop())
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// =============================================================================
// HEALTH AND HEADERS
// =============================================================================

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	h := decode[Health](t, rec)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, Version, h.Version)
}

func TestSecurityHeaders(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/thread", "")

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

// =============================================================================
// MESSAGES
// =============================================================================

func TestSubmit_ReturnsReply(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/messages", `{"text":"  ping  "}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[SubmitResponse](t, rec)
	assert.Equal(t, "pong", resp.Message.Content)
	assert.Equal(t, model.RoleAssistant, resp.Message.Role)
	assert.True(t, resp.Visible)
	assert.False(t, resp.Failed)

	th := decode[Thread](t, f.do(t, http.MethodGet, "/api/thread", ""))
	require.Len(t, th.Messages, 2)
	assert.Equal(t, "ping", th.Messages[0].Content)
	assert.False(t, th.Busy)
}

func TestSubmit_FailureReturnsApology(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("upstream down")

	rec := f.do(t, http.MethodPost, "/api/messages", `{"text":"ping"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[SubmitResponse](t, rec)
	assert.Equal(t, session.ApologyMessage, resp.Message.Content)
	assert.True(t, resp.Failed)
}

func TestSubmit_RejectsBadInput(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty text", `{"text":"   "}`, http.StatusBadRequest},
		{"missing text", `{}`, http.StatusBadRequest},
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"too long", `{"text":"` + strings.Repeat("a", MaxPromptLength+1) + `"}`, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/api/messages", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
	assert.Empty(t, f.sess.Messages())
}

func TestSubmit_ConflictWhileBusy(t *testing.T) {
	f := newFixture(t)
	f.gen.started = make(chan struct{}, 1)
	f.gen.release = make(chan struct{})

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- f.do(t, http.MethodPost, "/api/messages", `{"text":"slow"}`)
	}()
	<-f.gen.started

	rec := f.do(t, http.MethodPost, "/api/messages", `{"text":"second"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	th := decode[Thread](t, f.do(t, http.MethodGet, "/api/thread", ""))
	assert.True(t, th.Busy)

	close(f.gen.release)
	assert.Equal(t, http.StatusOK, (<-first).Code)
	assert.Len(t, f.sess.Messages(), 2)
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func TestConversations_Lifecycle(t *testing.T) {
	f := newFixture(t)

	list := decode[[]ConversationSummary](t, f.do(t, http.MethodGet, "/api/conversations", ""))
	assert.Empty(t, list)

	f.do(t, http.MethodPost, "/api/messages", `{"text":"first question"}`)
	rec := f.do(t, http.MethodPost, "/api/conversations", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	th := decode[Thread](t, rec)
	assert.Empty(t, th.Messages)
	assert.Empty(t, th.ID)

	list = decode[[]ConversationSummary](t, f.do(t, http.MethodGet, "/api/conversations", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "first question", list[0].Title)
	assert.Equal(t, 2, list[0].MessageCount)

	rec = f.do(t, http.MethodPost, "/api/conversations/"+list[0].ID+"/select", "")
	require.Equal(t, http.StatusOK, rec.Code)
	th = decode[Thread](t, rec)
	assert.Equal(t, list[0].ID, th.ID)
	assert.Len(t, th.Messages, 2)

	rec = f.do(t, http.MethodDelete, "/api/conversations/"+list[0].ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	th = decode[Thread](t, f.do(t, http.MethodGet, "/api/thread", ""))
	assert.Empty(t, th.ID)
	assert.Empty(t, th.Messages)
}

func TestConversations_ListFlushesPendingSave(t *testing.T) {
	f := newFixture(t)

	f.do(t, http.MethodPost, "/api/messages", `{"text":"unsaved question"}`)
	th := decode[Thread](t, f.do(t, http.MethodGet, "/api/thread", ""))
	assert.True(t, th.SavePending)
	assert.Empty(t, th.ID)

	list := decode[[]ConversationSummary](t, f.do(t, http.MethodGet, "/api/conversations", ""))
	require.Len(t, list, 1)
	assert.Equal(t, "unsaved question", list[0].Title)

	th = decode[Thread](t, f.do(t, http.MethodGet, "/api/thread", ""))
	assert.False(t, th.SavePending)
	assert.Equal(t, list[0].ID, th.ID)
}

func TestConversations_UnknownID(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/conversations/nope/select", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodDelete, "/api/conversations/nope", "").Code)
}

// =============================================================================
// AUTH
// =============================================================================

func TestAuth(t *testing.T) {
	f := newFixture(t)
	f.srv.WithAuthToken("s3cret")

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec *httptest.ResponseRecorder
			if tt.header == "" {
				rec = f.do(t, http.MethodGet, "/api/thread", "")
			} else {
				rec = f.do(t, http.MethodGet, "/api/thread", "", "Authorization", tt.header)
			}
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health", "").Code, "health is public")
}

func TestValidateBearerToken(t *testing.T) {
	assert.True(t, ValidateBearerToken("abc", "abc"))
	assert.False(t, ValidateBearerToken("abc", "abd"))
	assert.False(t, ValidateBearerToken("", ""))
	assert.False(t, ValidateBearerToken("abc", ""))
}

// =============================================================================
// RECOVERY AND LIFECYCLE
// =============================================================================

func TestRecoveryMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RecoveryMiddleware(zerolog.Nop()))
	e.GET("/boom", func(c *echo.Context) error {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	f := newFixture(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- f.srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestWithAddr(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, DefaultAddr, f.srv.Addr())
	assert.Equal(t, "0.0.0.0:9000", f.srv.WithAddr("0.0.0.0:9000").Addr())
	assert.Equal(t, "0.0.0.0:9000", f.srv.WithAddr("").Addr())
}
