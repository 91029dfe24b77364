package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/infrastructure/logger"
	"github.com/seminarhub/core/internal/ports"
)

// SeminarHandler handles seminar-related requests
type SeminarHandler struct {
	seminarService ports.SeminarService
	logger         *logger.Logger
}

// NewSeminarHandler creates a new seminar handler
func NewSeminarHandler(seminarService ports.SeminarService, logger *logger.Logger) *SeminarHandler {
	return &SeminarHandler{
		seminarService: seminarService,
		logger:         logger,
	}
}

// Register mounts the seminar routes on g
func (h *SeminarHandler) Register(g *echo.Group) {
	g.GET("", h.ListSeminars)
	g.POST("", h.CreateSeminar)
	g.GET("/:id", h.GetSeminar)
	g.PUT("/:id", h.UpdateSeminar)
	g.DELETE("/:id", h.DeleteSeminar)
}

// ListSeminars godoc
// @Summary List seminars
// @Description Get every seminar in stored order
// @Tags seminars
// @Produce json
// @Success 200 {array} entities.Seminar
// @Router /seminars [get]
func (h *SeminarHandler) ListSeminars(c echo.Context) error {
	seminars, err := h.seminarService.ListSeminars(c.Request().Context())
	if err != nil {
		h.logger.Errorw("List seminars failed", "error", err)
		return err
	}

	return c.JSON(http.StatusOK, seminars)
}

// GetSeminar godoc
// @Summary Get seminar by ID
// @Tags seminars
// @Produce json
// @Param id path int true "Seminar ID"
// @Success 200 {object} entities.Seminar
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /seminars/{id} [get]
func (h *SeminarHandler) GetSeminar(c echo.Context) error {
	id, err := parseSeminarID(c)
	if err != nil {
		return err
	}

	seminar, err := h.seminarService.GetSeminar(c.Request().Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, seminar)
}

// CreateSeminar godoc
// @Summary Create a new seminar
// @Description The id is assigned by the server; any id in the body is ignored
// @Tags seminars
// @Accept json
// @Produce json
// @Param request body ports.SeminarRequest true "Seminar data"
// @Success 201 {object} entities.Seminar
// @Failure 400 {object} ErrorResponse
// @Router /seminars [post]
func (h *SeminarHandler) CreateSeminar(c echo.Context) error {
	var req ports.SeminarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	seminar, err := h.seminarService.CreateSeminar(c.Request().Context(), req)
	if err != nil {
		h.logger.Warnw("Create seminar failed", "error", err)
		return err
	}

	return c.JSON(http.StatusCreated, seminar)
}

// UpdateSeminar godoc
// @Summary Replace a seminar
// @Description All fields are replaced; the id is taken from the path
// @Tags seminars
// @Accept json
// @Produce json
// @Param id path int true "Seminar ID"
// @Param request body ports.SeminarRequest true "Seminar data"
// @Success 200 {object} entities.Seminar
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /seminars/{id} [put]
func (h *SeminarHandler) UpdateSeminar(c echo.Context) error {
	id, err := parseSeminarID(c)
	if err != nil {
		return err
	}

	var req ports.SeminarRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	seminar, err := h.seminarService.UpdateSeminar(c.Request().Context(), id, req)
	if err != nil {
		h.logger.Warnw("Update seminar failed", "error", err, "seminar_id", id)
		return err
	}

	return c.JSON(http.StatusOK, seminar)
}

// DeleteSeminar godoc
// @Summary Delete a seminar
// @Tags seminars
// @Param id path int true "Seminar ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /seminars/{id} [delete]
func (h *SeminarHandler) DeleteSeminar(c echo.Context) error {
	id, err := parseSeminarID(c)
	if err != nil {
		return err
	}

	if err := h.seminarService.DeleteSeminar(c.Request().Context(), id); err != nil {
		h.logger.Warnw("Delete seminar failed", "error", err, "seminar_id", id)
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func parseSeminarID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return 0, entities.ErrInvalidSeminarID
	}
	return id, nil
}

// ErrorHandler renders every handler error as an ErrorResponse
func ErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := errorResponse(err)
		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		var sendErr error
		if c.Request().Method == http.MethodHead {
			sendErr = c.NoContent(code)
		} else {
			sendErr = c.JSON(code, resp)
		}
		if sendErr != nil {
			logger.Errorw("Error sending response", "error", sendErr)
		}
	}
}

// StatusCode returns the HTTP status ErrorHandler writes for err
func StatusCode(err error) int {
	code, _ := errorResponse(err)
	return code
}

func errorResponse(err error) (int, ErrorResponse) {
	var (
		verr *entities.ValidationError
		perr *entities.PersistenceError
		herr *echo.HTTPError
	)

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: verr.Fields}
	case errors.Is(err, entities.ErrSeminarNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "Seminar not found"}
	case errors.Is(err, entities.ErrInvalidSeminarID):
		return http.StatusBadRequest, ErrorResponse{Error: "Invalid seminar ID"}
	case errors.As(err, &perr):
		return http.StatusInternalServerError, ErrorResponse{Error: "Failed to save seminars"}
	case errors.As(err, &herr):
		msg, ok := herr.Message.(string)
		if !ok {
			msg = http.StatusText(herr.Code)
		}
		return herr.Code, ErrorResponse{Error: msg}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string                `json:"error"`
	Details []entities.FieldError `json:"details,omitempty"`
}
