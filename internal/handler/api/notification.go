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

type NotificationHandler struct {
	cmds commands.NotificationCommands
	q    queries.NotificationQueries
}

func NewNotificationHandler(cmds commands.NotificationCommands, q queries.NotificationQueries) *NotificationHandler {
	return &NotificationHandler{cmds: cmds, q: q}
}

// @Summary List notifications
// @Description List notifications newest first; non-admins only see their own
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param userId query string false "Filter by user ID (admin only)"
// @Param type query string false "Filter by type" Enums(email, sms, push)
// @Param status query string false "Filter by status" Enums(pending, sent, delivered, failed)
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} resdto.NotificationListResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}

	var query reqdto.ListNotificationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	page, err := h.q.List(c.Request.Context(), actor, query.Filter(), query.PageRequest())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromNotificationPage(page))
}

// @Summary Get notification
// @Description Get a notification by ID
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} resdto.NotificationResponse
// @Failure 404 {object} map[string]string
// @Router /notifications/{id} [get]
func (h *NotificationHandler) Get(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid notification ID format", nil)
		return
	}

	view, err := h.q.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromNotificationView(view))
}

// @Summary Create notification
// @Description Create a notification; sendImmediately marks it sent right away
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateNotificationRequest true "Notification request"
// @Success 201 {object} resdto.NotificationResponse
// @Failure 400 {object} map[string]string
// @Router /notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}

	var req reqdto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	snap, err := h.cmds.Create(c.Request.Context(), actor, req.ToCommand())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/notifications/%s", snap.ID))
	c.JSON(http.StatusCreated, resdto.FromNotificationSnapshot(snap))
}

// @Summary Resend notification
// @Description Resend a pending or failed notification
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} resdto.NotificationResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /notifications/{id}/resend [post]
func (h *NotificationHandler) Resend(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid notification ID format", nil)
		return
	}

	snap, err := h.cmds.Resend(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromNotificationSnapshot(snap))
}
