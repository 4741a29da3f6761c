package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/charlesng35/formstore/internal/middleware"
	"github.com/charlesng35/formstore/internal/services"
	appErrors "github.com/charlesng35/formstore/pkg/errors"
	"github.com/charlesng35/formstore/pkg/logger"
	"github.com/charlesng35/formstore/pkg/response"
)

// EntryHandler exposes the data entry endpoints.
type EntryHandler struct {
	svc *services.EntryService
}

// NewEntryHandler constructs an EntryHandler.
func NewEntryHandler(svc *services.EntryService) (*EntryHandler, error) {
	if svc == nil {
		return nil, errors.New("entry handler: service is required")
	}
	return &EntryHandler{svc: svc}, nil
}

type createEntryRequest struct {
	Value string `json:"value" validate:"required,notblank"`
}

// POST /api/data
func (h *EntryHandler) Create(c *gin.Context) {
	var req createEntryRequest
	if !bindAndValidate(c, &req, appErrors.ErrValueRequired) {
		return
	}

	result, err := h.svc.Create(requestContext(c), req.Value)
	if err != nil {
		h.fail(c, "create entry", err)
		return
	}

	response.JSON(c, http.StatusCreated, response.Created{
		Success: true,
		ID:      result.Entry.ID,
		Message: result.Message(),
		Storage: string(result.Storage),
	})
}

// GET /api/data
func (h *EntryHandler) List(c *gin.Context) {
	entries, err := h.svc.List(requestContext(c))
	if err != nil {
		h.fail(c, "list entries", err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

func (h *EntryHandler) fail(c *gin.Context, op string, err error) {
	appErr := appErrors.FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithModule("handlers").Error(op,
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
	}
	response.Error(c, appErr)
}
