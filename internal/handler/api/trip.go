package api

import (
	"fmt"
	"net/http"
	"strconv"

	reqdto "shuttle-service/internal/handler/dto/request"
	resdto "shuttle-service/internal/handler/dto/response"
	"shuttle-service/internal/handler/httperr"
	"shuttle-service/internal/handler/middleware"
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/tasks"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TripHandler struct {
	cmds        commands.TripCommands
	q           queries.TripQueries
	coordinator *tasks.Coordinator
}

func NewTripHandler(cmds commands.TripCommands, q queries.TripQueries, coordinator *tasks.Coordinator) *TripHandler {
	return &TripHandler{cmds: cmds, q: q, coordinator: coordinator}
}

// @Summary Create trip
// @Description Schedule a shuttle trip
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateTripRequest true "Trip request"
// @Success 201 {object} resdto.TripResponse
// @Failure 400 {object} map[string]string
// @Router /trips [post]
func (h *TripHandler) Create(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}

	var req reqdto.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	snap, err := h.cmds.Create(c.Request.Context(), actor, req.ToCommand())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/trips/%s", snap.ID))
	c.JSON(http.StatusCreated, resdto.FromTripSnapshot(snap))
}

// @Summary List trips
// @Description List trips with filters
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param routeId query int false "Filter by route ID"
// @Param subscriptionId query string false "Filter by subscription ID"
// @Param userId query string false "Filter by user ID"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param kind query string false "Filter by kind" Enums(morning, evening)
// @Param status query string false "Filter by status" Enums(scheduled, cancelled)
// @Success 200 {array} resdto.TripResponse
// @Router /trips [get]
func (h *TripHandler) List(c *gin.Context) {
	var query reqdto.ListTripsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid query parameters", nil)
		return
	}

	views, err := h.q.List(c.Request.Context(), query.Filter())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]*resdto.TripResponse, len(views))
	for i, view := range views {
		response[i] = resdto.FromTripView(view)
	}
	c.JSON(http.StatusOK, response)
}

// @Summary Get trip
// @Description Get a trip by ID
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Success 200 {object} resdto.TripResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id} [get]
func (h *TripHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid trip ID format", nil)
		return
	}

	view, err := h.q.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTripView(view))
}

// @Summary Request trip cancellation
// @Description Accepts the cancellation and processes it asynchronously; poll the returned task
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path string true "Trip ID"
// @Success 202 {object} resdto.TaskAcceptedResponse
// @Failure 404 {object} map[string]string
// @Router /trips/{id}/cancel [post]
func (h *TripHandler) Cancel(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errMissingActor, "Unauthorized", nil)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid trip ID format", nil)
		return
	}

	task, err := h.cmds.RequestCancellation(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/trip-tasks/%d", task.ID))
	c.JSON(http.StatusAccepted, resdto.TaskAcceptedResponse{
		TaskID: task.ID,
		Status: string(task.State),
	})
}

// @Summary Poll cancellation task
// @Description Get the current state of a trip cancellation task; terminal states are stable
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param id path int true "Task ID"
// @Success 200 {object} resdto.TaskResponse
// @Failure 404 {object} map[string]string
// @Router /trip-tasks/{id} [get]
func (h *TripHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid task ID format", nil)
		return
	}

	task, err := h.coordinator.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromTask(task))
}
