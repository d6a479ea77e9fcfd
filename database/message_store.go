package database

import (
	"context"

	"github.com/CUknot/roomchat/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MessageStore struct {
	db *gorm.DB
}

func NewMessageStore(db *gorm.DB) *MessageStore {
	return &MessageStore{db: db}
}

func (s *MessageStore) CreateMessage(ctx context.Context, message *models.Message) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
}

func (s *MessageStore) FindMessageByID(ctx context.Context, id uint) (*models.Message, error) {
	return findOne[models.Message](s.db.WithContext(ctx), id)
}

func (s *MessageStore) ListRoomMessages(ctx context.Context, roomID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// UpdateMessageText changes only the text column. A message deleted before
// or during the update yields nil, nil.
func (s *MessageStore) UpdateMessageText(ctx context.Context, id uint, text string) (*models.Message, error) {
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ?", id).
		Update("text", text)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return findOne[models.Message](s.db.WithContext(ctx), id)
}

// DeleteMessage removes the row; replies referencing it cascade in the schema.
func (s *MessageStore) DeleteMessage(ctx context.Context, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&models.Message{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
