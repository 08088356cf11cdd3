package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreateTrainer godoc
// @Summary      Create trainer profile
// @Description  Creates a trainer profile for an existing user. Admin only.
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateTrainerRequest  true  "Trainer data"
// @Success      201      {object}  Trainer
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/trainers [post]
func (h *Handler) CreateTrainer(c *gin.Context) {
	var req CreateTrainerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trainer, err := h.repo.CreateTrainer(c.Request.Context(), req.UserID, req.Name, req.Bio, req.Specialty)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create trainer"})
		return
	}

	c.JSON(http.StatusCreated, trainer)
}

// ListTrainers godoc
// @Summary      List trainers
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   Trainer
// @Failure      500  {object}  gin.H
// @Router       /trainers [get]
func (h *Handler) ListTrainers(c *gin.Context) {
	trainers, err := h.repo.ListTrainers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch trainers"})
		return
	}

	c.JSON(http.StatusOK, trainers)
}

// CreateSessionType godoc
// @Summary      Create session type
// @Description  Creates a timed session type. Admin only.
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSessionTypeRequest  true  "Session type data"
// @Success      201      {object}  SessionType
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/session-types [post]
func (h *Handler) CreateSessionType(c *gin.Context) {
	var req CreateSessionTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.repo.CreateSessionType(c.Request.Context(), req.Name, req.Description, req.DurationMinutes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session type"})
		return
	}

	c.JSON(http.StatusCreated, st)
}

// ListSessionTypes godoc
// @Summary      List session types
// @Tags         catalog
// @Produce      json
// @Success      200  {array}   SessionType
// @Failure      500  {object}  gin.H
// @Router       /session-types [get]
func (h *Handler) ListSessionTypes(c *gin.Context) {
	types, err := h.repo.ListSessionTypes(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch session types"})
		return
	}

	c.JSON(http.StatusOK, types)
}

// CreateOption godoc
// @Summary      Create session type option
// @Description  Creates a priced option. Subscription options require billing_period_days and sessions_per_week. Admin only.
// @Tags         catalog
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateOptionRequest  true  "Option data"
// @Success      201      {object}  SessionTypeOption
// @Failure      400      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /admin/session-type-options [post]
func (h *Handler) CreateOption(c *gin.Context) {
	var req CreateOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pricingType := PricingType(req.PricingType)
	switch pricingType {
	case PricingSubscription:
		if req.BillingPeriodDays == nil || req.SessionsPerWeek == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Subscription options require billing_period_days and sessions_per_week"})
			return
		}
	case PricingOneTime:
		if req.BillingPeriodDays != nil || req.SessionsPerWeek != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One-time options must not carry billing fields"})
			return
		}
	}

	if _, err := h.repo.GetSessionTypeByID(c.Request.Context(), req.SessionTypeID); err != nil {
		if errors.Is(err, ErrSessionTypeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session type not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	opt := &SessionTypeOption{
		SessionTypeID:     req.SessionTypeID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		PricingType:       pricingType,
		BillingPeriodDays: req.BillingPeriodDays,
		SessionsPerWeek:   req.SessionsPerWeek,
		MaxParticipants:   req.MaxParticipants,
	}

	created, err := h.repo.CreateOption(c.Request.Context(), opt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create option"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// ListOptions godoc
// @Summary      List options for session type
// @Tags         catalog
// @Produce      json
// @Param        sessionTypeID  path      int  true  "Session type ID"
// @Success      200            {array}   SessionTypeOption
// @Failure      400            {object}  gin.H
// @Failure      500            {object}  gin.H
// @Router       /session-types/{sessionTypeID}/options [get]
func (h *Handler) ListOptions(c *gin.Context) {
	sessionTypeID, err := strconv.Atoi(c.Param("sessionTypeID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session type ID"})
		return
	}

	options, err := h.repo.ListOptionsBySessionType(c.Request.Context(), sessionTypeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch options"})
		return
	}

	c.JSON(http.StatusOK, options)
}

// DeactivateOption godoc
// @Summary      Deactivate option
// @Description  Soft-deletes a priced option. Admin only.
// @Tags         catalog
// @Security     BearerAuth
// @Produce      json
// @Param        optionID  path      int  true  "Option ID"
// @Success      200       {object}  gin.H
// @Failure      400       {object}  gin.H
// @Failure      404       {object}  gin.H
// @Failure      500       {object}  gin.H
// @Router       /admin/session-type-options/{optionID} [delete]
func (h *Handler) DeactivateOption(c *gin.Context) {
	optionID, err := strconv.Atoi(c.Param("optionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid option ID"})
		return
	}

	if err := h.repo.DeactivateOption(c.Request.Context(), optionID); err != nil {
		if errors.Is(err, ErrOptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Option not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate option"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Option deactivated"})
}
