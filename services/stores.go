//go:generate go run go.uber.org/mock/mockgen -source=stores.go -destination=../mocks/mock_stores.go -package=mocks
package services

import (
	"context"

	"github.com/CUknot/roomchat/models"
)

// Lookups return nil, nil when the row does not exist.

type UserStore interface {
	FindUserByID(ctx context.Context, id uint) (*models.User, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	// CreateUser returns models.ErrDuplicateUsername when the username is taken.
	CreateUser(ctx context.Context, user *models.User) error
}

type RoomStore interface {
	// CreateRoomWithCreator inserts the room and the creator's membership
	// in a single transaction.
	CreateRoomWithCreator(ctx context.Context, name string, creatorID uint) (*models.Room, error)
	FindRoomByID(ctx context.Context, id uint) (*models.Room, error)
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
	// AddMember returns models.ErrDuplicateMember when the membership exists.
	AddMember(ctx context.Context, roomID, userID uint) (*models.RoomMember, error)
	RemoveMember(ctx context.Context, roomID, userID uint) (bool, error)
	ListMembers(ctx context.Context, roomID uint) ([]uint, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message *models.Message) error
	FindMessageByID(ctx context.Context, id uint) (*models.Message, error)
	// ListRoomMessages returns the room history oldest first.
	ListRoomMessages(ctx context.Context, roomID uint) ([]models.Message, error)
	// UpdateMessageText returns nil, nil when no row was updated.
	UpdateMessageText(ctx context.Context, id uint, text string) (*models.Message, error)
	DeleteMessage(ctx context.Context, id uint) (bool, error)
}
