//go:build unit

package api_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"shuttle-service/internal/domain/user"
	"shuttle-service/internal/handler/api"
	resdto "shuttle-service/internal/handler/dto/response"
	"shuttle-service/internal/handler/middleware"
	"shuttle-service/internal/pkg/clock"
	"shuttle-service/internal/pkg/config"
	"shuttle-service/internal/pkg/errs"
	"shuttle-service/internal/usecase/commands"
	"shuttle-service/internal/usecase/queries"
	"shuttle-service/internal/usecase/shared"
	"shuttle-service/internal/usecase/tasks"
	"shuttle-service/tests/common/builder"
	"shuttle-service/tests/common/httptest"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type stubTripCommands struct {
	create func(shared.Actor, commands.CreateTripCommand) (*shared.TripSnapshot, error)
	cancel func(shared.Actor, uuid.UUID) (tasks.Task, error)
}

func (s *stubTripCommands) Create(_ context.Context, actor shared.Actor, cmd commands.CreateTripCommand) (*shared.TripSnapshot, error) {
	return s.create(actor, cmd)
}

func (s *stubTripCommands) RequestCancellation(_ context.Context, actor shared.Actor, tripID uuid.UUID) (tasks.Task, error) {
	return s.cancel(actor, tripID)
}

type stubTripQueries struct {
	get  func(uuid.UUID) (*queries.TripView, error)
	list func(queries.TripFilter) ([]*queries.TripView, error)
}

func (s *stubTripQueries) Get(_ context.Context, id uuid.UUID) (*queries.TripView, error) {
	return s.get(id)
}

func (s *stubTripQueries) List(_ context.Context, filter queries.TripFilter) ([]*queries.TripView, error) {
	return s.list(filter)
}

type TripHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	cmds        *stubTripCommands
	queries     *stubTripQueries
	coordinator *tasks.Coordinator
	actorID     uuid.UUID
}

func (s *TripHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.router.Use(middleware.ErrorHandler())

	s.cmds = &stubTripCommands{}
	s.queries = &stubTripQueries{}
	// Not started: submitted tasks stay pending, which is all GetTask needs.
	s.coordinator = tasks.NewCoordinator(config.TasksConfig{
		Workers:   0,
		QueueSize: 4,
		Timeout:   time.Minute,
		Retention: time.Minute,
	}, clock.NewMockClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)))
	s.coordinator.Register(tasks.KindTripCancel, func(context.Context, uuid.UUID) (map[string]any, error) {
		return nil, nil
	})
	s.actorID = uuid.New()
	handler := api.NewTripHandler(s.cmds, s.queries, s.coordinator)

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("user_id", s.actorID)
		c.Set("user_role", user.RoleUser)
		c.Next()
	}

	s.router.GET("/trips", authMiddleware, handler.List)
	s.router.POST("/trips", authMiddleware, handler.Create)
	s.router.GET("/trips/:id", authMiddleware, handler.Get)
	s.router.POST("/trips/:id/cancel", authMiddleware, handler.Cancel)
	s.router.GET("/trip-tasks/:id", authMiddleware, handler.GetTask)
}

func TestTripHandlerSuite(t *testing.T) {
	suite.Run(t, new(TripHandlerTestSuite))
}

func (s *TripHandlerTestSuite) TestCreate() {
	url := "/trips"

	s.Run("201 Created with Location", func() {
		snap := builder.NewTripBuilder().BuildSnapshot()
		s.cmds.create = func(shared.Actor, commands.CreateTripCommand) (*shared.TripSnapshot, error) {
			return snap, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			builder.NewTripBuilder().BuildCreateRequestDTO(), "bearer-token")

		var body resdto.TripResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(snap.ID, body.ID)
		httptest.AssertHeaders(s.T(), rec, map[string]string{
			"Location": "/api/trips/" + snap.ID.String(),
		})
	})

	s.Run("400 Bad Request on validation errors", func() {
		for name, mutate := range map[string]func(map[string]any){
			"missing routeId": func(m map[string]any) { delete(m, "routeId") },
			"missing date":    func(m map[string]any) { delete(m, "date") },
			"bad kind":        func(m map[string]any) { m["kind"] = "noon" },
		} {
			s.Run(name, func() {
				body := builder.NewTripBuilder().BuildCreateRequestDTO()
				mutate(body)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})
}

func (s *TripHandlerTestSuite) TestGet() {
	s.Run("200 OK", func() {
		view := builder.NewTripBuilder().BuildView()
		s.queries.get = func(id uuid.UUID) (*queries.TripView, error) {
			s.Equal(view.ID, id)
			return view, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/trips/"+view.ID.String(), nil, "bearer-token")

		var body resdto.TripResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
	})

	s.Run("404 for unknown id", func() {
		s.queries.get = func(uuid.UUID) (*queries.TripView, error) {
			return nil, errs.ErrTripNotFound
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/trips/"+uuid.NewString(), nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})
}

func (s *TripHandlerTestSuite) TestList() {
	s.Run("filters are passed through", func() {
		s.queries.list = func(filter queries.TripFilter) ([]*queries.TripView, error) {
			s.Require().NotNil(filter.Kind)
			s.Equal("morning", *filter.Kind)
			return []*queries.TripView{builder.NewTripBuilder().BuildView()}, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/trips?kind=morning", nil, "bearer-token")

		var body []resdto.TripResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Len(body, 1)
	})
}

func (s *TripHandlerTestSuite) TestCancel() {
	s.Run("202 Accepted with the task Location", func() {
		tripID := uuid.New()
		s.cmds.cancel = func(_ shared.Actor, id uuid.UUID) (tasks.Task, error) {
			s.Equal(tripID, id)
			return tasks.Task{ID: 7, Kind: tasks.KindTripCancel, TargetID: id, State: tasks.StatePending}, nil
		}

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/trips/"+tripID.String()+"/cancel", nil, "bearer-token")

		var body resdto.TaskAcceptedResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusAccepted, &body)
		s.Equal(int64(7), body.TaskID)
		s.Equal("pending", body.Status)
		httptest.AssertHeaders(s.T(), rec, map[string]string{
			"Location": "/api/trip-tasks/7",
		})
	})

	s.Run("404 for unknown trip", func() {
		s.cmds.cancel = func(shared.Actor, uuid.UUID) (tasks.Task, error) {
			return tasks.Task{}, errs.ErrTripNotFound
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/trips/"+uuid.NewString()+"/cancel", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("403 for someone else's trip", func() {
		s.cmds.cancel = func(shared.Actor, uuid.UUID) (tasks.Task, error) {
			return tasks.Task{}, errs.ErrForbidden
		}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/trips/"+uuid.NewString()+"/cancel", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "")
	})
}

func (s *TripHandlerTestSuite) TestGetTask() {
	s.Run("200 OK for a pending task", func() {
		task, err := s.coordinator.Submit(context.Background(), tasks.KindTripCancel, uuid.New())
		s.Require().NoError(err)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet,
			fmt.Sprintf("/trip-tasks/%d", task.ID), nil, "bearer-token")

		var body resdto.TaskResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(task.ID, body.TaskID)
		s.Equal("pending", body.Status)
		s.Nil(body.FinishedAt)
	})

	s.Run("404 for unknown task", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/trip-tasks/999", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "")
	})

	s.Run("400 for a malformed task id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/trip-tasks/not-a-number", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}
