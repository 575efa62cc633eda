// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/rs/zerolog"

	"github.com/jeranaias/topnotch-tui/internal/model"
	"github.com/jeranaias/topnotch-tui/internal/session"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = "127.0.0.1:8787"

	// DefaultReplyTimeout bounds a single generation call.
	DefaultReplyTimeout = 2 * time.Minute

	// MaxPromptLength is the maximum accepted prompt size in bytes.
	MaxPromptLength = 32 * 1024

	// shutdownTimeout is how long in-flight requests get on shutdown.
	shutdownTimeout = 5 * time.Second

	// Version is reported by /health.
	Version = "0.3.0"
)

// ============================================================================
// WIRE TYPES
// ============================================================================

// ConversationSummary is one entry of GET /api/conversations.
type ConversationSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Thread is the active conversation.
type Thread struct {
	ID          string          `json:"id"`
	Busy        bool            `json:"busy"`
	SavePending bool            `json:"save_pending"`
	Messages    []model.Message `json:"messages"`
}

// SubmitRequest is the body of POST /api/messages.
type SubmitRequest struct {
	Text string `json:"text"`
}

// SubmitResponse is returned once the reply has been applied.
type SubmitResponse struct {
	Message model.Message `json:"message"`
	// Visible is false when the user switched conversations while waiting.
	Visible bool `json:"visible"`
	// Failed is true when the message is the apology for a failed call.
	Failed bool `json:"failed"`
}

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// ============================================================================
// SERVER
// ============================================================================

// Server serves the HTTP API for one session.
type Server struct {
	sess *session.Session
	log  zerolog.Logger

	addr         string
	authToken    string
	replyTimeout time.Duration
	started      time.Time

	echo *echo.Echo
}

// New creates a server for sess. Call the With* methods before serving.
func New(sess *session.Session, logger zerolog.Logger) *Server {
	s := &Server{
		sess:         sess,
		log:          logger.With().Str("component", "server").Logger(),
		addr:         DefaultAddr,
		replyTimeout: DefaultReplyTimeout,
		started:      time.Now(),
	}
	s.setupRoutes()
	return s
}

// WithAddr sets the listen address.
func (s *Server) WithAddr(addr string) *Server {
	if addr != "" {
		s.addr = addr
	}
	return s
}

// WithAuthToken requires a bearer token on /api routes.
func (s *Server) WithAuthToken(token string) *Server {
	s.authToken = token
	s.setupRoutes()
	return s
}

// WithReplyTimeout bounds each generation call.
func (s *Server) WithReplyTimeout(d time.Duration) *Server {
	if d > 0 {
		s.replyTimeout = d
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) setupRoutes() {
	e := echo.New()
	e.Use(RecoveryMiddleware(s.log))
	e.Use(LoggingMiddleware(s.log))
	e.Use(SecurityHeadersMiddleware())

	e.GET("/health", s.handleHealth)

	g := e.Group("/api", AuthMiddleware(s.authToken, s.log))
	g.GET("/conversations", s.handleListConversations)
	g.POST("/conversations", s.handleNewConversation)
	g.POST("/conversations/:id/select", s.handleSelectConversation)
	g.DELETE("/conversations/:id", s.handleDeleteConversation)
	g.GET("/thread", s.handleThread)
	g.POST("/messages", s.handleSubmit)

	s.echo = e
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warn().Err(err).Msg("shutdown")
		}
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Bool("auth", s.authToken != "").Msg("listening")
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, Health{
		Status:  "ok",
		Version: Version,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	})
}

func (s *Server) handleListConversations(c *echo.Context) error {
	// A thread still inside its auto-save delay would otherwise be missing.
	s.sess.Flush()
	convs := s.sess.Conversations()
	out := make([]ConversationSummary, 0, len(convs))
	for _, conv := range convs {
		out = append(out, ConversationSummary{
			ID:           conv.ID,
			Title:        conv.Title,
			MessageCount: conv.MessageCount,
			UpdatedAt:    conv.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleNewConversation(c *echo.Context) error {
	s.sess.NewConversation()
	return c.JSON(http.StatusCreated, s.thread())
}

func (s *Server) handleSelectConversation(c *echo.Context) error {
	if !s.sess.SelectConversation(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	return c.JSON(http.StatusOK, s.thread())
}

func (s *Server) handleDeleteConversation(c *echo.Context) error {
	id := c.Param("id")
	if !s.exists(id) {
		return echo.NewHTTPError(http.StatusNotFound, "conversation not found")
	}
	s.sess.DeleteConversation(id)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleThread(c *echo.Context) error {
	return c.JSON(http.StatusOK, s.thread())
}

func (s *Server) handleSubmit(c *echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// SECURITY: Bound prompt size before it reaches the generator.
	if len(req.Text) > MaxPromptLength {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "prompt too long")
	}
	if strings.TrimSpace(req.Text) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text required")
	}

	ex, ok := s.sess.Submit(req.Text)
	if !ok {
		return echo.NewHTTPError(http.StatusConflict, "a reply is already pending")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.replyTimeout)
	defer cancel()
	out := s.sess.Complete(ex.Run(ctx))

	return c.JSON(http.StatusOK, SubmitResponse{
		Message: out.Message,
		Visible: out.Visible,
		Failed:  out.Err != nil,
	})
}

func (s *Server) thread() Thread {
	snap := s.sess.Snapshot()
	msgs := snap.Messages
	if msgs == nil {
		msgs = []model.Message{}
	}
	return Thread{ID: snap.ActiveID, Busy: snap.Busy, SavePending: snap.SavePending, Messages: msgs}
}

func (s *Server) exists(id string) bool {
	for _, conv := range s.sess.Conversations() {
		if conv.ID == id {
			return true
		}
	}
	return false
}
