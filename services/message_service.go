package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/CUknot/roomchat/models"
	"github.com/rs/zerolog"
)

// MaxTextLength is the maximum message length in characters.
const MaxTextLength = 1000

// DeleteAudience selects who receives messageDeleted events.
type DeleteAudience string

const (
	// DeleteToUser delivers to the deleting user's own channel.
	DeleteToUser DeleteAudience = "user"
	// DeleteToRoom delivers to the room the message belonged to.
	DeleteToRoom DeleteAudience = "room"
)

func ParseDeleteAudience(s string) (DeleteAudience, error) {
	switch DeleteAudience(strings.ToLower(strings.TrimSpace(s))) {
	case DeleteToUser, "":
		return DeleteToUser, nil
	case DeleteToRoom:
		return DeleteToRoom, nil
	}
	return "", fmt.Errorf("unknown delete event audience %q", s)
}

type SendMessageInput struct {
	SenderID   uint
	Text       string
	RoomID     uint
	ReceiverID *uint
	ReplyTo    *uint
}

// MessageService owns the message lifecycle and decides who may send, edit,
// delete and reply.
type MessageService struct {
	messages       MessageStore
	users          UserStore
	rooms          RoomStore
	log            zerolog.Logger
	deleteAudience DeleteAudience
}

type MessageOption func(*MessageService)

func WithDeleteAudience(a DeleteAudience) MessageOption {
	return func(s *MessageService) {
		s.deleteAudience = a
	}
}

func NewMessageService(messages MessageStore, users UserStore, rooms RoomStore, log zerolog.Logger, opts ...MessageOption) *MessageService {
	s := &MessageService{
		messages:       messages,
		users:          users,
		rooms:          rooms,
		log:            log.With().Str("service", "message").Logger(),
		deleteAudience: DeleteToUser,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateText(text string) *Failure {
	if strings.TrimSpace(text) == "" {
		return ErrTextEmpty
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return ErrTextTooLong
	}
	return nil
}

// fault logs an unexpected store error and returns the generic failure.
func (s *MessageService) fault(err error, f *Failure, fields ...any) *Failure {
	s.log.Error().Err(err).Fields(fields).Msg(f.Message)
	return f
}

func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) Result[models.Message] {
	if f := validateText(in.Text); f != nil {
		return Fail[models.Message](f)
	}

	sender, err := s.users.FindUserByID(ctx, in.SenderID)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrSendFailed, "sender_id", in.SenderID))
	}
	if sender == nil {
		return Fail[models.Message](ErrSenderNotFound)
	}

	room, err := s.rooms.FindRoomByID(ctx, in.RoomID)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrSendFailed, "room_id", in.RoomID))
	}
	if room == nil {
		return Fail[models.Message](ErrRoomNotFound)
	}

	isMember, err := s.rooms.IsMember(ctx, in.RoomID, in.SenderID)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrSendFailed, "room_id", in.RoomID, "sender_id", in.SenderID))
	}
	if !isMember {
		return Fail[models.Message](ErrSenderNotMember)
	}

	if in.ReceiverID != nil {
		receiver, err := s.users.FindUserByID(ctx, *in.ReceiverID)
		if err != nil {
			return Fail[models.Message](s.fault(err, ErrSendFailed, "receiver_id", *in.ReceiverID))
		}
		if receiver == nil {
			return Fail[models.Message](ErrReceiverNotFound)
		}
		receiverIsMember, err := s.rooms.IsMember(ctx, in.RoomID, *in.ReceiverID)
		if err != nil {
			return Fail[models.Message](s.fault(err, ErrSendFailed, "room_id", in.RoomID, "receiver_id", *in.ReceiverID))
		}
		if !receiverIsMember {
			return Fail[models.Message](ErrReceiverNotMember)
		}
	}

	if in.ReplyTo != nil {
		original, err := s.messages.FindMessageByID(ctx, *in.ReplyTo)
		if err != nil {
			return Fail[models.Message](s.fault(err, ErrSendFailed, "reply_to", *in.ReplyTo))
		}
		if original == nil {
			return Fail[models.Message](ErrOriginalNotFound)
		}
		if original.RoomID != in.RoomID {
			return Fail[models.Message](ErrCrossRoomReply)
		}
	}

	message := models.Message{
		SenderID:   in.SenderID,
		ReceiverID: in.ReceiverID,
		RoomID:     in.RoomID,
		Text:       in.Text,
		ReplyTo:    in.ReplyTo,
	}
	if err := s.messages.CreateMessage(ctx, &message); err != nil {
		return Fail[models.Message](s.fault(err, ErrSendFailed, "room_id", in.RoomID, "sender_id", in.SenderID))
	}

	return Ok(http.StatusCreated, message).WithEvent(Event{
		Name:     EventMessageSent,
		Audience: RoomAudience(message.RoomID),
		Payload:  message,
	})
}

// GetRoomMessages returns the full room history. There is no pagination.
func (s *MessageService) GetRoomMessages(ctx context.Context, roomID, userID uint) Result[[]models.Message] {
	isMember, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return Fail[[]models.Message](s.fault(err, ErrGetMessagesFailed, "room_id", roomID, "user_id", userID))
	}
	if !isMember {
		return Fail[[]models.Message](ErrSenderNotMember)
	}

	messages, err := s.messages.ListRoomMessages(ctx, roomID)
	if err != nil {
		return Fail[[]models.Message](s.fault(err, ErrGetMessagesFailed, "room_id", roomID))
	}
	if messages == nil {
		messages = []models.Message{}
	}
	return Ok(http.StatusOK, messages)
}

func (s *MessageService) EditMessage(ctx context.Context, id, userID uint, text string) Result[models.Message] {
	if f := validateText(text); f != nil {
		return Fail[models.Message](f)
	}

	message, err := s.messages.FindMessageByID(ctx, id)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrEditFailed, "message_id", id))
	}
	if message == nil {
		return Fail[models.Message](ErrMessageNotFound)
	}
	if message.SenderID != userID {
		return Fail[models.Message](ErrEditNotAllowed)
	}

	updated, err := s.messages.UpdateMessageText(ctx, id, text)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrEditFailed, "message_id", id))
	}
	if updated == nil {
		// Deleted between the ownership check and the update.
		return Fail[models.Message](ErrUpdateFailed)
	}

	return Ok(http.StatusOK, *updated).WithEvent(Event{
		Name:     EventMessageEdited,
		Audience: RoomAudience(updated.RoomID),
		Payload:  *updated,
	})
}

func (s *MessageService) DeleteMessage(ctx context.Context, id, userID uint) Result[NoContent] {
	message, err := s.messages.FindMessageByID(ctx, id)
	if err != nil {
		return Fail[NoContent](s.fault(err, ErrDeleteFailed, "message_id", id))
	}
	if message == nil {
		return Fail[NoContent](ErrMessageNotFound)
	}
	if message.SenderID != userID {
		return Fail[NoContent](ErrDeleteNotAllowed)
	}

	deleted, err := s.messages.DeleteMessage(ctx, id)
	if err != nil {
		return Fail[NoContent](s.fault(err, ErrDeleteFailed, "message_id", id))
	}
	if !deleted {
		return Fail[NoContent](ErrMessageNotFound)
	}

	audience := UserAudience(userID)
	if s.deleteAudience == DeleteToRoom {
		audience = RoomAudience(message.RoomID)
	}
	return Ok(http.StatusNoContent, NoContent{}).WithEvent(Event{
		Name:     EventMessageDeleted,
		Audience: audience,
		Payload:  MessageDeletedPayload{ID: message.ID, RoomID: message.RoomID},
	})
}

// ReplyToMessage posts a reply into the original message's room, addressed to
// the original sender.
func (s *MessageService) ReplyToMessage(ctx context.Context, id, senderID uint, text string) Result[models.Message] {
	if f := validateText(text); f != nil {
		return Fail[models.Message](f)
	}

	original, err := s.messages.FindMessageByID(ctx, id)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrReplyFailed, "message_id", id))
	}
	if original == nil {
		return Fail[models.Message](ErrOriginalNotFound)
	}

	isMember, err := s.rooms.IsMember(ctx, original.RoomID, senderID)
	if err != nil {
		return Fail[models.Message](s.fault(err, ErrReplyFailed, "room_id", original.RoomID, "sender_id", senderID))
	}
	if !isMember {
		return Fail[models.Message](ErrSenderNotMember)
	}

	receiverID := original.SenderID
	replyTo := original.ID
	reply := models.Message{
		SenderID:   senderID,
		ReceiverID: &receiverID,
		RoomID:     original.RoomID,
		Text:       text,
		ReplyTo:    &replyTo,
	}
	if err := s.messages.CreateMessage(ctx, &reply); err != nil {
		return Fail[models.Message](s.fault(err, ErrReplyFailed, "message_id", id, "sender_id", senderID))
	}

	return Ok(http.StatusCreated, reply).WithEvent(Event{
		Name:     EventMessageReplied,
		Audience: RoomAudience(reply.RoomID),
		Payload:  reply,
	})
}
