package player

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"velobook/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreatePlayer godoc
// @Summary      Create player profile
// @Description  Creates a player owned by the authenticated user.
// @Tags         players
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePlayerRequest  true  "Player data"
// @Success      201      {object}  Player
// @Failure      400      {object}  gin.H
// @Failure      500      {object}  gin.H
// @Router       /players [post]
func (h *Handler) CreatePlayer(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		parsed, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "birth_date must be YYYY-MM-DD"})
			return
		}
		birthDate = &parsed
	}

	player, err := h.repo.Create(c.Request.Context(), userID, req.Name, birthDate, req.Notes)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create player"})
		return
	}

	c.JSON(http.StatusCreated, player)
}

// ListMyPlayers godoc
// @Summary      List my players
// @Tags         players
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Player
// @Failure      500  {object}  gin.H
// @Router       /players [get]
func (h *Handler) ListMyPlayers(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	players, err := h.repo.ListByParent(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch players"})
		return
	}

	c.JSON(http.StatusOK, players)
}

// GetPlayer godoc
// @Summary      Get player
// @Tags         players
// @Security     BearerAuth
// @Produce      json
// @Param        playerID  path      int  true  "Player ID"
// @Success      200       {object}  Player
// @Failure      400       {object}  gin.H
// @Failure      403       {object}  gin.H
// @Failure      404       {object}  gin.H
// @Router       /players/{playerID} [get]
func (h *Handler) GetPlayer(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	playerID, err := strconv.Atoi(c.Param("playerID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid player ID"})
		return
	}

	player, err := h.repo.GetByID(c.Request.Context(), playerID)
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Player not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	owned, err := h.repo.BelongsToUser(c.Request.Context(), playerID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !owned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Player does not belong to this user"})
		return
	}

	c.JSON(http.StatusOK, player)
}
