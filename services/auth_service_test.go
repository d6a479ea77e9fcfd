package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/CUknot/roomchat/mocks"
	"github.com/CUknot/roomchat/models"
	"github.com/CUknot/roomchat/services"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("should create user and hide the password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserStore(ctrl)
		svc := services.NewAuthService(users, mocks.NewMockTokenIssuer(ctrl), zerolog.Nop())

		users.EXPECT().FindUserByUsername(ctx, "alice").Return(nil, nil)
		users.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
			require.Equal(t, "alice", u.Username)
			u.ID = 1
			return nil
		})

		res := svc.Register(ctx, "  alice ", "secret123")
		require.Equal(t, http.StatusCreated, res.Status())
		view, _ := res.Data()
		require.Equal(t, services.UserView{ID: 1, Username: "alice"}, view)
	})

	t.Run("should validate input before touching the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := services.NewAuthService(mocks.NewMockUserStore(ctrl), mocks.NewMockTokenIssuer(ctrl), zerolog.Nop())

		require.Equal(t, services.ErrUsernameRequired, svc.Register(ctx, " ", "secret123").Failure())
		require.Equal(t, services.ErrPasswordTooShort, svc.Register(ctx, "alice", "12345").Failure())
	})

	t.Run("should reject taken usernames", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserStore(ctrl)
		svc := services.NewAuthService(users, mocks.NewMockTokenIssuer(ctrl), zerolog.Nop())

		users.EXPECT().FindUserByUsername(ctx, "alice").Return(&models.User{ID: 1}, nil)
		res := svc.Register(ctx, "alice", "secret123")
		require.Equal(t, http.StatusUnprocessableEntity, res.Status())

		users.EXPECT().FindUserByUsername(ctx, "alice").Return(nil, nil)
		users.EXPECT().CreateUser(ctx, gomock.Any()).Return(models.ErrDuplicateUsername)
		require.Equal(t, services.ErrUsernameTaken, svc.Register(ctx, "alice", "secret123").Failure())
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("should issue a token for valid credentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserStore(ctrl)
		tokens := mocks.NewMockTokenIssuer(ctrl)
		svc := services.NewAuthService(users, tokens, zerolog.Nop())

		users.EXPECT().FindUserByUsername(ctx, "alice").
			Return(&models.User{ID: 1, Username: "alice", Password: hashed(t, "secret123")}, nil)
		tokens.EXPECT().GenerateToken(uint(1)).Return("signed", nil)

		res := svc.Login(ctx, "alice", "secret123")
		require.Equal(t, http.StatusOK, res.Status())
		data, _ := res.Data()
		require.Equal(t, "signed", data.Token)
		require.Equal(t, uint(1), data.User.ID)
	})

	t.Run("should distinguish unknown user from wrong password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserStore(ctrl)
		tokens := mocks.NewMockTokenIssuer(ctrl)
		svc := services.NewAuthService(users, tokens, zerolog.Nop())

		users.EXPECT().FindUserByUsername(ctx, "ghost").Return(nil, nil)
		require.Equal(t, http.StatusNotFound, svc.Login(ctx, "ghost", "secret123").Status())

		users.EXPECT().FindUserByUsername(ctx, "alice").
			Return(&models.User{ID: 1, Username: "alice", Password: hashed(t, "secret123")}, nil)
		tokens.EXPECT().GenerateToken(gomock.Any()).Times(0)
		require.Equal(t, services.ErrInvalidPassword, svc.Login(ctx, "alice", "wrong-pass").Failure())
	})

	t.Run("should hide signing errors", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		users := mocks.NewMockUserStore(ctrl)
		tokens := mocks.NewMockTokenIssuer(ctrl)
		svc := services.NewAuthService(users, tokens, zerolog.Nop())

		users.EXPECT().FindUserByUsername(ctx, "alice").
			Return(&models.User{ID: 1, Username: "alice", Password: hashed(t, "secret123")}, nil)
		tokens.EXPECT().GenerateToken(uint(1)).Return("", errors.New("bad key"))

		require.Equal(t, services.ErrLoginFailed, svc.Login(ctx, "alice", "secret123").Failure())
	})
}

func TestAuthService_GetUser(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserStore(ctrl)
	svc := services.NewAuthService(users, mocks.NewMockTokenIssuer(ctrl), zerolog.Nop())

	users.EXPECT().FindUserByID(ctx, uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil)
	users.EXPECT().FindUserByID(ctx, uint(2)).Return(nil, nil)
	users.EXPECT().FindUserByID(ctx, uint(3)).Return(nil, errStore)

	user, ok := svc.GetUser(ctx, 1).Data()
	require.True(t, ok)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, services.ErrUserNotFound, svc.GetUser(ctx, 2).Failure())
	require.Equal(t, services.ErrGetUserFailed, svc.GetUser(ctx, 3).Failure())
}
