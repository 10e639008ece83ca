package server

import (
	"net/http"

	errs "github.com/amorlink/amorlink/errors"
	"github.com/amorlink/amorlink/models"
	"github.com/amorlink/amorlink/server/response"
	"github.com/gin-gonic/gin"
)

func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if err := c.ShouldBindJSON(&user); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		created, apiErr := s.AuthService.SignupUser(&user)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "Signup successful", http.StatusCreated, created.ToResponse(), nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := c.ShouldBindJSON(&loginRequest); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		loginResponse, apiErr := s.AuthService.LoginUser(&loginRequest)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "login successful", http.StatusOK, loginResponse, nil)
	}
}

func (s *Server) handleSetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		var req models.SetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, err)
			return
		}

		if apiErr := s.AuthService.SetPassword(token, req.Password); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "password set successfully", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		accessToken := c.GetString("access_token")
		if apiErr := s.AuthService.LogoutUser(accessToken, user.Email); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}

		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := userFromContext(c)
		if !ok {
			response.JSON(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		response.JSON(c, "", http.StatusOK, user.ToResponse(), nil)
	}
}

func userFromContext(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
