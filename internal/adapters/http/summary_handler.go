package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/board/internal/infrastructure/logger"
	"github.com/taskmaster/board/internal/ports"
)

// SummaryHandler serves board-wide aggregates
type SummaryHandler struct {
	store  ports.RecordStore
	logger *logger.Logger
}

// NewSummaryHandler creates a new summary handler
func NewSummaryHandler(store ports.RecordStore, logger *logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		store:  store,
		logger: logger,
	}
}

// GetSummary godoc
// @Summary Board summary
// @Description Record counts per collection, project and task status histograms, open tasks and live sessions
// @Tags summary
// @Produce json
// @Success 200 {object} ports.BoardSummary
// @Router /summary [get]
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	summary, err := h.store.Summary(c.Request().Context())
	if err != nil {
		h.logger.Errorw("Build summary failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, summary)
}
