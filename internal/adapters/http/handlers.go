package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/taskmaster/board/internal/application/services"
	"github.com/taskmaster/board/internal/domain/entities"
	"github.com/taskmaster/board/internal/infrastructure/logger"
	"github.com/taskmaster/board/internal/ports"
)

// CollectionHandler serves CRUD requests for one collection
type CollectionHandler struct {
	collection string
	store      ports.RecordStore
	logger     *logger.Logger
}

// NewCollectionHandler creates a new collection handler
func NewCollectionHandler(collection string, store ports.RecordStore, logger *logger.Logger) *CollectionHandler {
	return &CollectionHandler{
		collection: collection,
		store:      store,
		logger:     logger.WithFields("collection", collection),
	}
}

// Register mounts the collection routes on g
func (h *CollectionHandler) Register(g *echo.Group) {
	r := g.Group("/" + h.collection)
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PATCH("/:id", h.Patch)
	r.PUT("/:id", h.Replace)
	r.DELETE("/:id", h.Delete)
}

// List godoc
// @Summary List records
// @Description Returns every record of the collection. Query parameters filter by field equality.
// @Tags records
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {array} object
// @Router /{collection} [get]
func (h *CollectionHandler) List(c echo.Context) error {
	records, err := h.store.List(c.Request().Context(), h.collection)
	if err != nil {
		return h.storeError(c, "List records failed", err)
	}

	return c.JSON(http.StatusOK, services.FilterRecords(records, queryFilter(c)))
}

// Create godoc
// @Summary Create a record
// @Description Appends the request body to the collection as given
// @Tags records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param record body object true "Record"
// @Success 201 {object} object
// @Failure 400 {object} MessageResponse
// @Router /{collection} [post]
func (h *CollectionHandler) Create(c echo.Context) error {
	record, err := bindRecord(c)
	if err != nil {
		return err
	}

	created, err := h.store.Create(c.Request().Context(), h.collection, record)
	if err != nil {
		return h.storeError(c, "Create record failed", err)
	}

	return c.JSON(http.StatusCreated, created)
}

// Get godoc
// @Summary Get a record
// @Tags records
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Success 200 {object} object
// @Failure 404 {object} MessageResponse
// @Router /{collection}/{id} [get]
func (h *CollectionHandler) Get(c echo.Context) error {
	record, err := h.store.GetByID(c.Request().Context(), h.collection, c.Param("id"))
	if err != nil {
		return h.storeError(c, "Get record failed", err)
	}

	return c.JSON(http.StatusOK, record)
}

// Patch godoc
// @Summary Merge fields into a record
// @Tags records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Param fields body object true "Fields to overwrite"
// @Success 200 {object} object
// @Failure 404 {object} MessageResponse
// @Router /{collection}/{id} [patch]
func (h *CollectionHandler) Patch(c echo.Context) error {
	fields, err := bindRecord(c)
	if err != nil {
		return err
	}

	updated, err := h.store.Patch(c.Request().Context(), h.collection, c.Param("id"), fields)
	if err != nil {
		return h.storeError(c, "Patch record failed", err)
	}

	return c.JSON(http.StatusOK, updated)
}

// Replace godoc
// @Summary Replace a record
// @Tags records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Param record body object true "Full record"
// @Success 200 {object} object
// @Failure 404 {object} MessageResponse
// @Router /{collection}/{id} [put]
func (h *CollectionHandler) Replace(c echo.Context) error {
	record, err := bindRecord(c)
	if err != nil {
		return err
	}

	replaced, err := h.store.Replace(c.Request().Context(), h.collection, c.Param("id"), record)
	if err != nil {
		return h.storeError(c, "Replace record failed", err)
	}

	return c.JSON(http.StatusOK, replaced)
}

// Delete godoc
// @Summary Delete a record
// @Tags records
// @Param collection path string true "Collection name"
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} MessageResponse
// @Router /{collection}/{id} [delete]
func (h *CollectionHandler) Delete(c echo.Context) error {
	existed, err := h.store.Remove(c.Request().Context(), h.collection, c.Param("id"))
	if err != nil {
		return h.storeError(c, "Delete record failed", err)
	}
	if !existed {
		return echo.NewHTTPError(http.StatusNotFound, MessageNotFound)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CollectionHandler) storeError(c echo.Context, msg string, err error) error {
	switch {
	case errors.Is(err, entities.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, MessageNotFound)
	case errors.Is(err, entities.ErrInvalidRecord):
		return echo.NewHTTPError(http.StatusBadRequest, MessageInvalidBody)
	}

	h.logger.
		WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
		WithError(err).
		Errorw(msg, "record_id", c.Param("id"))
	return err
}

// bindRecord reads the request body as one JSON object. echo's Bind is not
// used because it decodes numbers as float64.
func bindRecord(c echo.Context) (entities.Record, error) {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, MessageInvalidBody).SetInternal(err)
	}

	record, err := entities.DecodeRecord(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, MessageInvalidBody).SetInternal(err)
	}
	return record, nil
}

// queryFilter turns query parameters into field filters. Names starting with
// an underscore are reserved and ignored.
func queryFilter(c echo.Context) ports.RecordFilter {
	params := c.QueryParams()
	if len(params) == 0 {
		return nil
	}

	filter := make(ports.RecordFilter, len(params))
	for name, values := range params {
		if strings.HasPrefix(name, "_") || len(values) == 0 {
			continue
		}
		filter[name] = values[0]
	}
	return filter
}

// Response messages
const (
	MessageNotFound    = "Not found"
	MessageInvalidBody = "Invalid request body"
)

// MessageResponse is the body of every error response
type MessageResponse struct {
	Message string `json:"message"`
}
