//go:build e2e

package trip_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"shuttle-service/internal/domain/user"
	reqdto "shuttle-service/internal/handler/dto/request"
	resdto "shuttle-service/internal/handler/dto/response"
	"shuttle-service/tests/common/httptest"
	"shuttle-service/tests/e2e"
	"shuttle-service/tests/e2e/common/helper"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	tripsURL     = "/api/trips"
	tripTasksURL = "/api/trip-tasks"
)

type tripSuite struct {
	e2e.SharedSuite
	auth *helper.AuthTestHelper
}

func TestTripSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(tripSuite))
}

func (s *tripSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.auth = helper.NewAuthTestHelper(s.DB, s.Config.JWT)
}

func (s *tripSuite) createTrip(t *testing.T, token string, ownerID *uuid.UUID) resdto.TripResponse {
	t.Helper()

	w := httptest.PerformRequest(t, s.Router, http.MethodPost, tripsURL,
		reqdto.CreateTripRequest{RouteID: 12, UserID: ownerID, Date: "2026-02-02", Kind: "morning"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res resdto.TripResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &res))
	return res
}

// pollTask polls the task endpoint until it reaches a terminal state.
func (s *tripSuite) pollTask(t *testing.T, token string, taskID int64) resdto.TaskResponse {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		w := httptest.PerformRequest(t, s.Router, http.MethodGet,
			fmt.Sprintf("%s/%d", tripTasksURL, taskID), nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var task resdto.TaskResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &task))
		if task.Status == "success" || task.Status == "failed" {
			return task
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("task %d never reached a terminal state", taskID)
	return resdto.TaskResponse{}
}

func (s *tripSuite) TestCancellationFlow() {
	s.Run("accepted cancellation ends with a cancelled trip", func() {
		t := s.T()
		ownerID := s.auth.CreateTestUser(t, "rider@example.com", string(user.RoleUser))
		token := s.auth.LoginUser(t, s.Router, "rider@example.com", "password123")

		created := s.createTrip(t, token, &ownerID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+created.ID.String()+"/cancel", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

		var accepted resdto.TaskAcceptedResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &accepted))
		require.Equal(t, "pending", accepted.Status)
		require.Equal(t, fmt.Sprintf("%s/%d", tripTasksURL, accepted.TaskID), w.Header().Get("Location"))

		task := s.pollTask(t, token, accepted.TaskID)
		require.Equal(t, "success", task.Status)
		require.Equal(t, created.ID, task.TargetID)
		require.NotNil(t, task.FinishedAt)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, tripsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		var fetched resdto.TripResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &fetched))
		require.Equal(t, "cancelled", fetched.Status)
	})

	s.Run("terminal task state is stable across polls", func() {
		t := s.T()
		ownerID := s.auth.CreateTestUser(t, "rider@example.com", string(user.RoleUser))
		token := s.auth.LoginUser(t, s.Router, "rider@example.com", "password123")

		created := s.createTrip(t, token, &ownerID)
		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+created.ID.String()+"/cancel", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code)

		var accepted resdto.TaskAcceptedResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &accepted))

		first := s.pollTask(t, token, accepted.TaskID)
		second := s.pollTask(t, token, accepted.TaskID)
		require.Equal(t, first.Status, second.Status)
		require.Equal(t, first.FinishedAt, second.FinishedAt)
	})

	s.Run("cancelling an already cancelled trip is idempotent", func() {
		t := s.T()
		ownerID := s.auth.CreateTestUser(t, "rider@example.com", string(user.RoleUser))
		token := s.auth.LoginUser(t, s.Router, "rider@example.com", "password123")

		created := s.createTrip(t, token, &ownerID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+created.ID.String()+"/cancel", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code)
		var accepted resdto.TaskAcceptedResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &accepted))
		done := s.pollTask(t, token, accepted.TaskID)
		require.Equal(t, "success", done.Status)

		w = httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+created.ID.String()+"/cancel", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code)
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &accepted))

		repeat := s.pollTask(t, token, accepted.TaskID)
		require.Equal(t, "success", repeat.Status)
		require.Empty(t, repeat.Error)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, tripsURL+"/"+created.ID.String(), nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		var fetched resdto.TripResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &fetched))
		require.Equal(t, "cancelled", fetched.Status)
	})

	s.Run("non-owner cannot request cancellation", func() {
		t := s.T()
		ownerID := s.auth.CreateTestUser(t, "owner@example.com", string(user.RoleUser))
		ownerToken := s.auth.LoginUser(t, s.Router, "owner@example.com", "password123")
		otherToken := s.auth.CreateAndLogin(t, s.Router, "other@example.com", string(user.RoleUser))

		created := s.createTrip(t, ownerToken, &ownerID)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+created.ID.String()+"/cancel", nil, otherToken)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	})

	s.Run("unknown trip answers 404 synchronously", func() {
		t := s.T()
		token := s.auth.CreateAndLogin(t, s.Router, "rider@example.com", string(user.RoleUser))

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+uuid.NewString()+"/cancel", nil, token)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	s.Run("unknown task answers 404", func() {
		t := s.T()
		token := s.auth.CreateAndLogin(t, s.Router, "rider@example.com", string(user.RoleUser))

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, tripTasksURL+"/999999", nil, token)
		require.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})
}

func (s *tripSuite) TestListFilters() {
	s.Run("status filter narrows the result", func() {
		t := s.T()
		ownerID := s.auth.CreateTestUser(t, "rider@example.com", string(user.RoleUser))
		token := s.auth.LoginUser(t, s.Router, "rider@example.com", "password123")

		first := s.createTrip(t, token, &ownerID)
		s.createTrip(t, token, nil)

		w := httptest.PerformRequest(t, s.Router, http.MethodPost,
			tripsURL+"/"+first.ID.String()+"/cancel", nil, token)
		require.Equal(t, http.StatusAccepted, w.Code)
		var accepted resdto.TaskAcceptedResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &accepted))
		s.pollTask(t, token, accepted.TaskID)

		w = httptest.PerformRequest(t, s.Router, http.MethodGet, tripsURL+"?status=cancelled", nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var trips []resdto.TripResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &trips))
		require.Len(t, trips, 1)
		require.Equal(t, first.ID, trips[0].ID)
	})
}
