package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CUknot/roomchat/services"
)

type CredentialsInput struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"secret123"`
}

// AuthController serves registration, login and user lookup.
type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(auth *services.AuthService) *AuthController {
	return &AuthController{auth: auth}
}

// CreateUser godoc
// @Summary Register a new user
// @Description Creates a user account with a hashed password
// @Tags users
// @Accept json
// @Produce json
// @Param user body CredentialsInput true "User Registration"
// @Success 201 {object} services.UserView "User created"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Username already registered"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/user/create [post]
func (ctl *AuthController) CreateUser(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	render(c, nil, ctl.auth.Register(c.Request.Context(), input.Username, input.Password))
}

// Login godoc
// @Summary Log in
// @Description Exchanges username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsInput true "Credentials"
// @Success 200 {object} services.AuthResponse "Token issued"
// @Failure 401 {object} map[string]string "Invalid password"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/auth/login [post]
func (ctl *AuthController) Login(c *gin.Context) {
	var input CredentialsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	render(c, nil, ctl.auth.Login(c.Request.Context(), input.Username, input.Password))
}

// GetUser godoc
// @Summary Get a user
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid user id"
// @Failure 404 {object} map[string]string "User not found"
// @Router /api/user/{id} [get]
func (ctl *AuthController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id", "user id")
	if !ok {
		return
	}

	render(c, nil, ctl.auth.GetUser(c.Request.Context(), id))
}
