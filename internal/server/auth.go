package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"activity-planner/internal/model"
	"activity-planner/internal/service"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleSignup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	user, err := s.users.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": gin.H{"id": user.ID, "email": user.Email, "name": user.Name}})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}
	session, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": session.Token})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.users.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) handleMe(c *gin.Context) {
	user := c.MustGet(userKey).(*model.User)
	c.JSON(http.StatusOK, gin.H{"user": gin.H{"id": user.ID, "email": user.Email, "name": user.Name}})
}
