package database

import (
	"context"
	"errors"

	"github.com/CUknot/roomchat/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomStore struct {
	db *gorm.DB
}

func NewRoomStore(db *gorm.DB) *RoomStore {
	return &RoomStore{db: db}
}

// CreateRoomWithCreator writes the room and its creator's membership in one
// transaction, so a failed membership insert leaves no memberless room.
func (s *RoomStore) CreateRoomWithCreator(ctx context.Context, name string, creatorID uint) (*models.Room, error) {
	room := models.Room{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&room).Error; err != nil {
			return err
		}
		member := models.RoomMember{RoomID: room.ID, UserID: creatorID}
		return tx.Omit(clause.Associations).Create(&member).Error
	})
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *RoomStore) FindRoomByID(ctx context.Context, id uint) (*models.Room, error) {
	return findOne[models.Room](s.db.WithContext(ctx), id)
}

func (s *RoomStore) IsMember(ctx context.Context, roomID, userID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddMember relies on the composite primary key to reject duplicates that
// race past the service's membership check.
func (s *RoomStore) AddMember(ctx context.Context, roomID, userID uint) (*models.RoomMember, error) {
	member := models.RoomMember{RoomID: roomID, UserID: userID}
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&member).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, models.ErrDuplicateMember
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (s *RoomStore) RemoveMember(ctx context.Context, roomID, userID uint) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Delete(&models.RoomMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *RoomStore) ListMembers(ctx context.Context, roomID uint) ([]uint, error) {
	var members []models.RoomMember
	err := s.db.WithContext(ctx).Select("user_id").
		Where("room_id = ?", roomID).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return lo.Map(members, func(m models.RoomMember, _ int) uint {
		return m.UserID
	}), nil
}
