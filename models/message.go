package models

import (
	"time"
)

type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID *uint     `json:"receiver_id,omitempty"`
	RoomID     uint      `gorm:"not null;index:idx_messages_room_created" json:"room_id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	ReplyTo    *uint     `gorm:"index" json:"reply_to,omitempty"`
	CreatedAt  time.Time `gorm:"index:idx_messages_room_created" json:"created_at"`

	Sender   User     `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Receiver *User    `gorm:"foreignKey:ReceiverID;constraint:OnDelete:CASCADE" json:"-"`
	Room     Room     `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"-"`
	Original *Message `gorm:"foreignKey:ReplyTo;constraint:OnDelete:CASCADE" json:"-"`
}
