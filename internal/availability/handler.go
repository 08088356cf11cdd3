package availability

import (
	"errors"
	"net/http"
	"strconv"

	"velobook/internal/auth"
	"velobook/internal/catalog"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service     Service
	catalogRepo catalog.Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service:     NewService(NewRepository(db)),
		catalogRepo: catalog.NewRepository(db),
	}
}

func (h *Handler) trainerForUser(c *gin.Context) (*catalog.Trainer, bool) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return nil, false
	}

	trainer, err := h.catalogRepo.GetTrainerByUserID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, catalog.ErrTrainerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trainer profile not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}

	return trainer, true
}

// AddWindow godoc
// @Summary      Add availability window
// @Description  Adds a weekly availability window for the authenticated trainer.
// @Tags         availability
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateWindowRequest  true  "Window data"
// @Success      201      {object}  Window
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /availability [post]
func (h *Handler) AddWindow(c *gin.Context) {
	trainer, ok := h.trainerForUser(c)
	if !ok {
		return
	}

	var req CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := h.service.AddWindow(c.Request.Context(), trainer.ID, req.Weekday, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, ErrInvalidInterval) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, window)
}

// ListMyWindows godoc
// @Summary      List my availability
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Window
// @Failure      404  {object}  gin.H
// @Router       /availability [get]
func (h *Handler) ListMyWindows(c *gin.Context) {
	trainer, ok := h.trainerForUser(c)
	if !ok {
		return
	}

	windows, err := h.service.ListWindows(c.Request.Context(), trainer.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
		return
	}

	c.JSON(http.StatusOK, windows)
}

// ListTrainerWindows godoc
// @Summary      List trainer availability
// @Description  Public schedule for a trainer.
// @Tags         availability
// @Produce      json
// @Param        trainerID  path      int  true  "Trainer ID"
// @Success      200        {array}   Window
// @Failure      400        {object}  gin.H
// @Failure      404        {object}  gin.H
// @Router       /trainers/{trainerID}/availability [get]
func (h *Handler) ListTrainerWindows(c *gin.Context) {
	trainerID, err := strconv.Atoi(c.Param("trainerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid trainer ID"})
		return
	}

	if _, err := h.catalogRepo.GetTrainerByID(c.Request.Context(), trainerID); err != nil {
		if errors.Is(err, catalog.ErrTrainerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Trainer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	windows, err := h.service.ListWindows(c.Request.Context(), trainerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch availability"})
		return
	}

	c.JSON(http.StatusOK, windows)
}

// UpdateWindow godoc
// @Summary      Update availability window
// @Tags         availability
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        windowID  path      int                  true  "Window ID"
// @Param        request   body      UpdateWindowRequest  true  "Fields to update"
// @Success      200       {object}  Window
// @Failure      400       {object}  gin.H
// @Failure      403       {object}  gin.H
// @Failure      404       {object}  gin.H
// @Router       /availability/{windowID} [patch]
func (h *Handler) UpdateWindow(c *gin.Context) {
	trainer, ok := h.trainerForUser(c)
	if !ok {
		return
	}

	windowID, err := strconv.Atoi(c.Param("windowID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window ID"})
		return
	}

	var req UpdateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	window, err := h.service.UpdateWindow(c.Request.Context(), windowID, trainer.ID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrWindowNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Window not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to update this window"})
		case errors.Is(err, ErrInvalidInterval):
			c.JSON(http.StatusBadRequest, gin.H{"error": "End time must be after start time"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, window)
}

// DeleteWindow godoc
// @Summary      Delete availability window
// @Tags         availability
// @Security     BearerAuth
// @Produce      json
// @Param        windowID  path      int  true  "Window ID"
// @Success      200       {object}  gin.H
// @Failure      400       {object}  gin.H
// @Failure      403       {object}  gin.H
// @Failure      404       {object}  gin.H
// @Router       /availability/{windowID} [delete]
func (h *Handler) DeleteWindow(c *gin.Context) {
	trainer, ok := h.trainerForUser(c)
	if !ok {
		return
	}

	windowID, err := strconv.Atoi(c.Param("windowID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid window ID"})
		return
	}

	if err := h.service.DeleteWindow(c.Request.Context(), windowID, trainer.ID); err != nil {
		switch {
		case errors.Is(err, ErrWindowNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Window not found"})
		case errors.Is(err, ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this window"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete window"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Window deleted"})
}
