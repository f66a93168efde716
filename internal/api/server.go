package api

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"

	"github.com/samcharles93/fbxcore/internal/export"
	"github.com/samcharles93/fbxcore/internal/logger"
	"github.com/samcharles93/fbxcore/pkg/fbx"
)

// DefaultMaxUpload bounds request bodies when Config.MaxUpload is unset.
const DefaultMaxUpload = 64 << 20

type Config struct {
	// LoadOptions are applied to every uploaded document.
	LoadOptions []fbx.Option
	MaxUpload   int64
	// RateLimit is the sustained number of uploads per second. Zero
	// disables limiting.
	RateLimit float64
	RateBurst int
	Logger    logger.Logger
}

type Server struct {
	store   *DocumentStore
	cfg     Config
	log     logger.Logger
	limiter *rate.Limiter
	clock   func() time.Time
}

func NewServer(store *DocumentStore, cfg Config) *Server {
	if store == nil {
		store = NewDocumentStore()
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Discard()
	}
	s := &Server{
		store: store,
		cfg:   cfg,
		log:   cfg.Logger.With("component", "api"),
		clock: time.Now,
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateBurst, 1))
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)

	e.POST("/v1/documents", s.handleUpload, s.rateLimit)
	e.GET("/v1/documents", s.handleList)
	e.GET("/v1/documents/:id", s.handleGet)
	e.GET("/v1/documents/:id/summary", s.handleSummary)
	e.GET("/v1/documents/:id/text", s.handleText)
	e.DELETE("/v1/documents/:id", s.handleDelete)
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if s.limiter != nil && !s.limiter.Allow() {
			return writeError(c, http.StatusTooManyRequests, "rate_limit_error", "upload rate exceeded", "", "")
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, HealthResp{Status: "ok", Documents: s.store.Len()})
}

func (s *Server) handleUpload(c *echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, s.cfg.MaxUpload)
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(c, http.StatusRequestEntityTooLarge, "invalid_request_error", "document exceeds upload limit", "", "too_large")
		}
		return writeBadRequest(c, err.Error(), "io")
	}

	doc, err := fbx.Parse(bytes.NewReader(data), int64(len(data)), s.cfg.LoadOptions...)
	if err != nil {
		status, code := loadErrorCode(err)
		s.log.Warn("rejected document", "bytes", len(data), "kind", code, "error", err)
		return writeError(c, status, "invalid_request_error", err.Error(), "", code)
	}

	sum, err := s.store.Add(c.QueryParam("name"), int64(len(data)), doc, s.clock())
	if err != nil {
		_ = doc.Close()
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
	s.log.Info("stored document", "id", sum.ID, "bytes", sum.Size, "nodes", sum.Stats.Nodes)
	return writeJSON(c, http.StatusCreated, sum)
}

func (s *Server) handleList(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, DocumentList{Object: "list", Data: s.store.List()})
}

func (s *Server) handleGet(c *echo.Context) error {
	id := c.Param("id")
	opts := export.Options{Arrays: queryBool(c, "arrays", false)}
	err := s.store.With(id, func(doc *fbx.Document) error {
		tree, err := export.Tree(doc, opts)
		if err != nil {
			return err
		}
		return writeJSON(c, http.StatusOK, tree)
	})
	if errors.Is(err, ErrNotFound) {
		return writeNotFound(c, "document not found")
	}
	return err
}

func (s *Server) handleSummary(c *echo.Context) error {
	sum, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, "document not found")
	}
	return writeJSON(c, http.StatusOK, sum)
}

func (s *Server) handleText(c *echo.Context) error {
	id := c.Param("id")
	opts := fbx.StringifyOptions{OmitProperties: !queryBool(c, "properties", true)}
	err := s.store.With(id, func(doc *fbx.Document) error {
		w := c.Response()
		w.Header().Set(echo.HeaderContentType, echo.MIMETextPlainCharsetUTF8)
		w.WriteHeader(http.StatusOK)
		return fbx.WriteText(w, doc, opts)
	})
	if errors.Is(err, ErrNotFound) {
		return writeNotFound(c, "document not found")
	}
	return err
}

func (s *Server) handleDelete(c *echo.Context) error {
	id := c.Param("id")
	if !s.store.Delete(id) {
		return writeNotFound(c, "document not found")
	}
	s.log.Info("deleted document", "id", id)
	return writeJSON(c, http.StatusOK, DeleteDocumentResp{
		ID:      id,
		Object:  "fbx.document.deleted",
		Deleted: true,
	})
}
