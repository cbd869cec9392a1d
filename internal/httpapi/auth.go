package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thenoetrevino/quadro/internal/models"
	userservice "github.com/thenoetrevino/quadro/internal/services/user"
)

var errTokensDisabled = models.Unauthorized("token issuing is not configured")

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// Register creates an account and returns a token for it
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := s.app.UserService.Register(c.Request.Context(), userservice.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	s.respondWithToken(c, http.StatusCreated, user)
}

// Login exchanges credentials for a token
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := s.app.UserService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	s.respondWithToken(c, http.StatusOK, user)
}

// Me returns the authenticated user
func (s *Server) Me(c *gin.Context) {
	user, err := s.app.UserService.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) respondWithToken(c *gin.Context, status int, user *models.User) {
	if s.app.Tokens == nil {
		respondError(c, errTokensDisabled)
		return
	}
	token, err := s.app.Tokens.Issue(user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, authResponse{User: user, Token: token})
}
