package subscription

import (
	"errors"
	"net/http"
	"strconv"

	"velobook/internal/auth"
	"velobook/internal/catalog"
	"velobook/internal/player"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Handler struct {
	service Service
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{
		service: NewService(NewRepository(db), player.NewRepository(db), catalog.NewRepository(db)),
	}
}

// Create godoc
// @Summary      Create subscription
// @Description  Starts a token subscription for a player on a subscription-priced option.
// @Tags         subscriptions
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSubscriptionRequest  true  "Subscription data"
// @Success      201      {object}  Subscription
// @Failure      400      {object}  gin.H
// @Failure      403      {object}  gin.H
// @Failure      404      {object}  gin.H
// @Failure      409      {object}  gin.H
// @Router       /subscriptions [post]
func (h *Handler) Create(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPlayerNotOwned):
			c.JSON(http.StatusForbidden, gin.H{"error": "Player does not belong to this user"})
		case errors.Is(err, catalog.ErrOptionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Session type option not found"})
		case errors.Is(err, ErrNotSubscriptionOption):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Option is not subscription-priced"})
		case errors.Is(err, ErrDuplicateActive):
			c.JSON(http.StatusConflict, gin.H{"error": "Player already has an active subscription for this program"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		}
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// ListMine godoc
// @Summary      List my subscriptions
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        active  query     bool  false  "Only active subscriptions"
// @Success      200     {array}   Subscription
// @Failure      500     {object}  gin.H
// @Router       /subscriptions [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var (
		subs []Subscription
		err  error
	)
	if c.Query("active") == "true" {
		subs, err = h.service.GetActiveSubscriptions(c.Request.Context(), userID)
	} else {
		subs, err = h.service.GetMySubscriptions(c.Request.Context(), userID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// ListByPlayer godoc
// @Summary      List player subscriptions
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        playerID  path      int  true  "Player ID"
// @Success      200       {array}   Subscription
// @Failure      400       {object}  gin.H
// @Failure      403       {object}  gin.H
// @Router       /players/{playerID}/subscriptions [get]
func (h *Handler) ListByPlayer(c *gin.Context) {
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

	subs, err := h.service.GetPlayerSubscriptions(c.Request.Context(), userID, playerID)
	if err != nil {
		if errors.Is(err, ErrPlayerNotOwned) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Player does not belong to this user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subscriptions"})
		return
	}

	c.JSON(http.StatusOK, subs)
}

// ListTransactions godoc
// @Summary      List token ledger
// @Description  Returns the append-only token transaction history for a subscription.
// @Tags         subscriptions
// @Security     BearerAuth
// @Produce      json
// @Param        subscriptionID  path      int  true   "Subscription ID"
// @Param        limit           query     int  false  "Page size"
// @Param        offset          query     int  false  "Offset"
// @Success      200             {array}   TokenTransaction
// @Failure      400             {object}  gin.H
// @Failure      403             {object}  gin.H
// @Failure      404             {object}  gin.H
// @Router       /subscriptions/{subscriptionID}/transactions [get]
func (h *Handler) ListTransactions(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	subscriptionID, err := strconv.Atoi(c.Param("subscriptionID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	txs, err := h.service.GetTransactions(c.Request.Context(), userID, subscriptionID, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, ErrSubscriptionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Subscription not found"})
		case errors.Is(err, ErrNotSubscriptionOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have access to this subscription"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
		}
		return
	}

	c.JSON(http.StatusOK, txs)
}
