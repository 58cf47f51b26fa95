// Package server exposes the ledger over HTTP.
package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/date"
	"github.com/etnz/ledger/docs"
	"github.com/etnz/ledger/renderer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxLineBytes bounds the body of a posted transaction.
const maxLineBytes = 64 << 10

// Server wires the router, the ledger services and middleware.
type Server struct {
	R        *gin.Engine
	Resolver *ledger.Resolver
	Loader   *ledger.Loader
	Logger   *zap.Logger
	Currency string // Currency of the HTML reports.
}

type response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message,omitempty"`
	Data       any    `json:"data,omitempty"`
}

type transactionsResponse struct {
	Party        []ledger.Record `json:"party"`
	Counterparty []ledger.Record `json:"counterparty"`
}

// NewServer creates a Server. Responses allow requests from corsOrigin, "*"
// for any origin.
func NewServer(resolver *ledger.Resolver, loader *ledger.Loader, logger *zap.Logger, corsOrigin, currency string) *Server {
	g := gin.New()

	// request logging
	g.Use(func(cn *gin.Context) {
		start := time.Now()
		cn.Next()
		logger.Info("http_request",
			zap.String("method", cn.Request.Method),
			zap.String("path", cn.Request.URL.Path),
			zap.Int("status", cn.Writer.Status()),
			zap.String("ip", cn.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		)
	})

	g.Use(gin.Recovery())

	// CORS
	g.Use(func(cn *gin.Context) {
		origin := cn.GetHeader("Origin")
		h := cn.Writer.Header()
		h.Set("Vary", "Origin")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Max-Age", "86400")
		if corsOrigin == "*" {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if origin != "" && origin == corsOrigin {
			h.Set("Access-Control-Allow-Origin", corsOrigin)
		}
		if cn.Request.Method == http.MethodOptions {
			cn.AbortWithStatus(http.StatusNoContent)
			return
		}
		cn.Next()
	})

	s := &Server{
		R:        g,
		Resolver: resolver,
		Loader:   loader,
		Logger:   logger,
		Currency: currency,
	}

	g.GET("/health", func(cn *gin.Context) { cn.JSON(http.StatusOK, gin.H{"ok": true}) })
	g.GET("/position", s.getPosition)
	g.GET("/transactions", s.getTransactions)
	g.POST("/transactions", s.postTransaction)
	g.GET("/docs", s.getDoc)
	g.GET("/docs/:topic", s.getDoc)

	return s
}

// --- Helpers ---

func (s *Server) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response{StatusCode: http.StatusBadRequest, Message: msg})
}

func (s *Server) internalError(c *gin.Context, where string, err error) {
	s.Logger.Error("internal_error", zap.String("where", where), zap.Error(err))
	c.JSON(http.StatusInternalServerError, response{StatusCode: http.StatusInternalServerError, Message: "internal server error"})
}

func wantsHTML(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) == gin.MIMEHTML
}

func (s *Server) html(c *gin.Context, markdown string) {
	page, err := renderer.HTML(markdown)
	if err != nil {
		s.internalError(c, "HTML", err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// --- Handlers ---

func (s *Server) getPosition(c *gin.Context) {
	entity := strings.TrimSpace(c.Query("entity"))
	on := strings.TrimSpace(c.Query("date"))
	if entity == "" || on == "" {
		s.badRequest(c, "Wrong params")
		return
	}

	sum, err := s.Resolver.Position(c.Request.Context(), entity, on)
	if err != nil {
		if isBadDate(err) {
			s.badRequest(c, "Wrong params")
			return
		}
		s.internalError(c, "Position", err)
		return
	}
	if wantsHTML(c) {
		s.html(c, renderer.RenderPosition(renderer.NewPosition(entity, on, s.Currency, sum)))
		return
	}
	c.JSON(http.StatusOK, response{StatusCode: http.StatusOK, Data: sum})
}

func (s *Server) getTransactions(c *gin.Context) {
	entity := strings.TrimSpace(c.Query("entity"))
	on := strings.TrimSpace(c.Query("date"))
	if entity == "" {
		s.badRequest(c, "Wrong params")
		return
	}

	asParty, asCounterparty, err := s.Resolver.Transactions(c.Request.Context(), entity, on)
	if err != nil {
		if isBadDate(err) {
			s.badRequest(c, "Wrong params")
			return
		}
		s.internalError(c, "Transactions", err)
		return
	}
	if wantsHTML(c) {
		s.html(c, renderer.RenderTransactions(renderer.NewTransactions(entity, on, s.Currency, asParty, asCounterparty)))
		return
	}
	if asParty == nil {
		asParty = []ledger.Record{}
	}
	if asCounterparty == nil {
		asCounterparty = []ledger.Record{}
	}
	c.JSON(http.StatusOK, response{StatusCode: http.StatusOK, Data: transactionsResponse{Party: asParty, Counterparty: asCounterparty}})
}

func (s *Server) postTransaction(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxLineBytes))
	if err != nil {
		s.badRequest(c, "body too large")
		return
	}
	line := strings.TrimSpace(string(body))
	if line == "" {
		s.badRequest(c, "Wrong params")
		return
	}

	r, err := s.Loader.Load(c.Request.Context(), line)
	var perr *ledger.ParseError
	switch {
	case errors.As(err, &perr):
		s.badRequest(c, perr.Error())
		return
	case err != nil:
		s.internalError(c, "Load", err)
		return
	}
	s.Logger.Debug("transaction stored", zap.String("party", r.Party), zap.String("datetime", r.Datetime))
	c.JSON(http.StatusCreated, response{StatusCode: http.StatusCreated, Data: r})
}

func (s *Server) getDoc(c *gin.Context) {
	topic := c.Param("topic")
	if topic == "" {
		topic = docs.Index
	}
	content, err := docs.Topic(topic)
	if err != nil {
		c.JSON(http.StatusNotFound, response{StatusCode: http.StatusNotFound, Message: "unknown topic"})
		return
	}
	s.html(c, content)
}

// isBadDate reports whether err comes from an invalid date parameter.
func isBadDate(err error) bool {
	return errors.Is(err, date.ErrInvalidDate)
}
