//go:generate go run go.uber.org/mock/mockgen -source=auth_service.go -destination=../mocks/mock_token_issuer.go -package=mocks
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CUknot/roomchat/models"
	"github.com/rs/zerolog"
)

const minPasswordLength = 6

// TokenIssuer signs session tokens for a user id.
type TokenIssuer interface {
	GenerateToken(userID uint) (string, error)
}

type UserView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  UserStore
	tokens TokenIssuer
	log    zerolog.Logger
}

func NewAuthService(users UserStore, tokens TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		log:    log.With().Str("service", "auth").Logger(),
	}
}

func (s *AuthService) Register(ctx context.Context, username, password string) Result[UserView] {
	username = strings.TrimSpace(username)
	if username == "" {
		return Fail[UserView](ErrUsernameRequired)
	}
	if len(password) < minPasswordLength {
		return Fail[UserView](ErrPasswordTooShort)
	}

	existing, err := s.users.FindUserByUsername(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg(ErrCreateUserFailed.Message)
		return Fail[UserView](ErrCreateUserFailed)
	}
	if existing != nil {
		return Fail[UserView](ErrUsernameTaken)
	}

	user := models.User{Username: username, Password: password}
	err = s.users.CreateUser(ctx, &user)
	if errors.Is(err, models.ErrDuplicateUsername) {
		return Fail[UserView](ErrUsernameTaken)
	}
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg(ErrCreateUserFailed.Message)
		return Fail[UserView](ErrCreateUserFailed)
	}

	return Ok(http.StatusCreated, UserView{ID: user.ID, Username: user.Username})
}

func (s *AuthService) Login(ctx context.Context, username, password string) Result[AuthResponse] {
	user, err := s.users.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg(ErrLoginFailed.Message)
		return Fail[AuthResponse](ErrLoginFailed)
	}
	if user == nil {
		return Fail[AuthResponse](ErrUserNotFound)
	}

	if err := user.ValidatePassword(password); err != nil {
		return Fail[AuthResponse](ErrInvalidPassword)
	}

	token, err := s.tokens.GenerateToken(user.ID)
	if err != nil {
		s.log.Error().Err(err).Uint("user_id", user.ID).Msg("token generation failed")
		return Fail[AuthResponse](ErrLoginFailed)
	}

	return Ok(http.StatusOK, AuthResponse{
		Token: token,
		User:  UserView{ID: user.ID, Username: user.Username},
	})
}

func (s *AuthService) GetUser(ctx context.Context, id uint) Result[models.User] {
	user, err := s.users.FindUserByID(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Uint("user_id", id).Msg(ErrGetUserFailed.Message)
		return Fail[models.User](ErrGetUserFailed)
	}
	if user == nil {
		return Fail[models.User](ErrUserNotFound)
	}
	return Ok(http.StatusOK, *user)
}
