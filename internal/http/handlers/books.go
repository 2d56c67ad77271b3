package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/bookgraph/internal/embedding"
	"github.com/yungbote/bookgraph/internal/http/response"
	"github.com/yungbote/bookgraph/internal/platform/apierr"
	"github.com/yungbote/bookgraph/internal/platform/logger"
	"github.com/yungbote/bookgraph/internal/recommend"
)

const (
	defaultMaxHit      = 1
	defaultMaxRelevant = 2
)

type BookRecommender interface {
	Search(ctx context.Context, query string, maxHit, maxRelevant int) (recommend.Result, error)
}

type BooksHandler struct {
	svc BookRecommender
	log *logger.Logger
}

func NewBooksHandler(svc BookRecommender, log *logger.Logger) *BooksHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BooksHandler{svc: svc, log: log.With("handler", "BooksHandler")}
}

// GET /books?q=<text>&max_hit=1&max_relevant=2
func (h *BooksHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.RespondAPIError(c, apierr.BadRequest("invalid_request", errors.New("missing query parameter q")))
		return
	}
	maxHit, err := intParam(c, defaultMaxHit, "max_hit", "maxHit")
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_request", err))
		return
	}
	maxRelevant, err := intParam(c, defaultMaxRelevant, "max_relevant", "maxRelevant")
	if err != nil {
		response.RespondAPIError(c, apierr.BadRequest("invalid_request", err))
		return
	}

	res, err := h.svc.Search(c.Request.Context(), q, maxHit, maxRelevant)
	if err != nil {
		response.RespondAPIError(c, classify(err))
		return
	}
	response.RespondOK(c, res)
}

func classify(err error) error {
	switch {
	case errors.Is(err, embedding.ErrNotFound):
		return apierr.New(http.StatusInternalServerError, "embedding_not_found", err)
	case errors.Is(err, recommend.ErrSearchBackend):
		return apierr.New(http.StatusBadGateway, "search_backend_error", err)
	default:
		return err
	}
}

// intParam reads the first present of names as a non-negative integer.
func intParam(c *gin.Context, def int, names ...string) (int, error) {
	for _, name := range names {
		raw, ok := c.GetQuery(name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, raw)
		}
		return n, nil
	}
	return def, nil
}
