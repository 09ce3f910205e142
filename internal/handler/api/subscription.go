package api

import (
	"fmt"
	"net/http"

	reqdto "shuttle-service/internal/handler/dto/request"
	resdto "shuttle-service/internal/handler/dto/response"
	"shuttle-service/internal/handler/httperr"
	"shuttle-service/internal/handler/middleware"
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SubscriptionHandler struct {
	cmds commands.SubscriptionCommands
	q    queries.SubscriptionQueries
}

func NewSubscriptionHandler(cmds commands.SubscriptionCommands, q queries.SubscriptionQueries) *SubscriptionHandler {
	return &SubscriptionHandler{cmds: cmds, q: q}
}

// @Summary List subscriptions
// @Description List subscriptions with filters and pagination; non-admins only see their own
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by user ID (admin only)"
// @Param routeId query int false "Filter by route ID"
// @Param semester query string false "Filter by semester"
// @Param status query string false "Filter by status" Enums(active, cancelled)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} resdto.SubscriptionListResponse
// @Failure 401 {object} map[string]string
// @Router /subscriptions [get]
func (h *SubscriptionHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}

	var query reqdto.ListSubscriptionsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	page, err := h.q.List(c.Request.Context(), actor, query.Filter(), query.PageRequest())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromSubscriptionPage(page))
}

// @Summary Get subscription
// @Description Get a subscription by ID; the response carries its ETag header
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 200 {object} resdto.SubscriptionResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id} [get]
func (h *SubscriptionHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid subscription ID format", nil)
		return
	}

	view, err := h.q.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("ETag", view.ETag)
	c.JSON(http.StatusOK, resdto.FromSubscriptionView(view))
}

// @Summary Create subscription
// @Description Create a subscription; reactivates a cancelled one with the same route and semester
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateSubscriptionRequest true "Subscription request"
// @Success 200 {object} resdto.SubscriptionResponse "Reactivated"
// @Success 201 {object} resdto.SubscriptionResponse "Created"
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /subscriptions [post]
func (h *SubscriptionHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}

	var req reqdto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), actor, req.ToCommand())
	if err != nil {
		respondError(c, err)
		return
	}

	sub := result.Subscription
	c.Header("ETag", sub.ETag())
	if result.Outcome == commands.OutcomeCreated {
		c.Header("Location", fmt.Sprintf("/api/subscriptions/%s", sub.ID))
		c.JSON(http.StatusCreated, resdto.FromSubscriptionSnapshot(sub))
		return
	}
	c.JSON(http.StatusOK, resdto.FromSubscriptionSnapshot(sub))
}

// @Summary Update subscription
// @Description Update a subscription; requires the If-Match header with the current ETag
// @Tags subscriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param If-Match header string true "Current resource ETag"
// @Param request body reqdto.UpdateSubscriptionRequest true "Fields to update"
// @Success 200 {object} resdto.SubscriptionResponse
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 412 {object} map[string]string
// @Failure 428 {object} map[string]string
// @Router /subscriptions/{id} [put]
func (h *SubscriptionHandler) Update(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid subscription ID format", nil)
		return
	}

	var req reqdto.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	snap, err := h.cmds.Update(c.Request.Context(), actor, id, c.GetHeader("If-Match"), req.ToCommand())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("ETag", snap.ETag())
	c.JSON(http.StatusOK, resdto.FromSubscriptionSnapshot(snap))
}

// @Summary Delete subscription
// @Description Delete a subscription permanently
// @Tags subscriptions
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Param If-Match header string false "Current resource ETag"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /subscriptions/{id} [delete]
func (h *SubscriptionHandler) Delete(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid subscription ID format", nil)
		return
	}

	if err := h.cmds.Delete(c.Request.Context(), actor, id, c.GetHeader("If-Match")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
