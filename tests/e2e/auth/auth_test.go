//go:build e2e

package auth_test

import (
	"net/http"
	"testing"

	"shuttle-service/internal/domain/user"
	reqdto "shuttle-service/internal/handler/dto/request"
	resdto "shuttle-service/internal/handler/dto/response"
	"shuttle-service/tests/common/httptest"
	"shuttle-service/tests/e2e"
	"shuttle-service/tests/e2e/common/helper"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	loginURL   = "/api/auth/login"
	refreshURL = "/api/auth/refresh"
	meURL      = "/api/auth/me"
)

type authSuite struct {
	e2e.SharedSuite
	auth *helper.AuthTestHelper
}

func TestAuthSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(authSuite))
}

func (s *authSuite) SetupSuite() {
	s.SharedSuite.SetupSuite()
	s.auth = helper.NewAuthTestHelper(s.DB, s.Config.JWT)
}

func (s *authSuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()

	s.auth.CreateTestUser(s.T(), "rider@example.com", string(user.RoleUser))
	inactiveID := s.auth.CreateTestUser(s.T(), "inactive@example.com", string(user.RoleUser))

	_, err := s.DB.Exec(s.T().Context(), "UPDATE users SET is_active = false WHERE id = $1", inactiveID)
	require.NoError(s.T(), err)
}

func (s *authSuite) TestLogin() {
	tests := []struct {
		name           string
		email          string
		password       string
		expectedStatus int
	}{
		{
			name:           "valid credentials",
			email:          "rider@example.com",
			password:       "password123",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown user",
			email:          "nobody@example.com",
			password:       "password123",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong password",
			email:          "rider@example.com",
			password:       "wrong-password",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "inactive account",
			email:          "inactive@example.com",
			password:       "password123",
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "empty email",
			email:          "",
			password:       "password123",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty password",
			email:          "rider@example.com",
			password:       "",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			t := s.T()

			w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL,
				reqdto.LoginRequest{Email: tt.email, Password: tt.password}, "")
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus == http.StatusOK {
				var loginRes resdto.LoginResponse
				require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &loginRes))
				require.NotEmpty(t, loginRes.AccessToken)
				require.NotEmpty(t, loginRes.RefreshToken)
				require.Equal(t, tt.email, loginRes.User.Email)

				var lastLogin any
				err := s.DB.QueryRow(t.Context(),
					"SELECT last_login_at FROM users WHERE email = $1", tt.email).Scan(&lastLogin)
				require.NoError(t, err)
				require.NotNil(t, lastLogin, "last_login_at should be set after login")
			}
		})
	}
}

func (s *authSuite) TestRefresh() {
	s.Run("valid refresh token rotates the pair", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL,
			reqdto.LoginRequest{Email: "rider@example.com", Password: "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		var loginRes resdto.LoginResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &loginRes))

		w = httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL,
			reqdto.RefreshRequest{RefreshToken: loginRes.RefreshToken}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var refreshRes resdto.RefreshResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &refreshRes))
		require.NotEmpty(t, refreshRes.AccessToken)
		require.NotEmpty(t, refreshRes.RefreshToken)
	})

	s.Run("refresh cookie is used when the body carries no token", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, loginURL,
			reqdto.LoginRequest{Email: "rider@example.com", Password: "password123"}, "")
		require.Equal(t, http.StatusOK, w.Code)
		refreshCookie := httptest.ExtractCookie(w, "refresh_token")
		require.NotNil(t, refreshCookie)

		w = httptest.PerformRequestWithCookies(t, s.Router, http.MethodPost, refreshURL,
			nil, []*http.Cookie{refreshCookie}, "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	s.Run("access token cannot be used to refresh", func() {
		t := s.T()
		token := s.auth.LoginUser(t, s.Router, "rider@example.com", "password123")

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL,
			reqdto.RefreshRequest{RefreshToken: token}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})

	s.Run("garbage refresh token is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodPost, refreshURL,
			reqdto.RefreshRequest{RefreshToken: "not-a-jwt"}, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})
}

func (s *authSuite) TestMe() {
	s.Run("authenticated user sees their profile", func() {
		t := s.T()
		token := s.auth.LoginUser(t, s.Router, "rider@example.com", "password123")

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var me resdto.UserResponse
		require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &me))
		require.Equal(t, "rider@example.com", me.Email)
		require.Equal(t, string(user.RoleUser), me.Role)
		require.NotContains(t, w.Body.String(), "password")
	})

	s.Run("expired token is rejected", func() {
		t := s.T()
		userID := s.auth.CreateTestUser(t, "expiry@example.com", string(user.RoleUser))
		expired := s.auth.CreateExpiredToken(t, userID, user.RoleUser)

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, expired)
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})

	s.Run("missing token is rejected", func() {
		t := s.T()

		w := httptest.PerformRequest(t, s.Router, http.MethodGet, meURL, nil, "")
		require.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
	})
}
