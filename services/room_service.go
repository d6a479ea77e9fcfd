package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/CUknot/roomchat/models"
	"github.com/rs/zerolog"
)

// RoomService owns room creation and membership changes.
type RoomService struct {
	rooms RoomStore
	users UserStore
	log   zerolog.Logger
	now   func() time.Time
}

type RoomOption func(*RoomService)

// WithClock overrides the clock used for member event timestamps.
func WithClock(now func() time.Time) RoomOption {
	return func(s *RoomService) {
		s.now = now
	}
}

func NewRoomService(rooms RoomStore, users UserStore, log zerolog.Logger, opts ...RoomOption) *RoomService {
	s := &RoomService{
		rooms: rooms,
		users: users,
		log:   log.With().Str("service", "room").Logger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RoomService) fault(err error, f *Failure, fields ...any) *Failure {
	s.log.Error().Err(err).Fields(fields).Msg(f.Message)
	return f
}

// CreateRoom creates a room with its creator as the first member. The creator
// is looked up before the name is checked.
func (s *RoomService) CreateRoom(ctx context.Context, name string, creatorID uint) Result[models.Room] {
	creator, err := s.users.FindUserByID(ctx, creatorID)
	if err != nil {
		return Fail[models.Room](s.fault(err, ErrCreateRoomFailed, "creator_id", creatorID))
	}
	if creator == nil {
		return Fail[models.Room](ErrCreatorNotFound)
	}

	if strings.TrimSpace(name) == "" {
		return Fail[models.Room](ErrRoomNameEmpty)
	}

	room, err := s.rooms.CreateRoomWithCreator(ctx, name, creatorID)
	if err != nil {
		return Fail[models.Room](s.fault(err, ErrCreateRoomFailed, "creator_id", creatorID))
	}
	return Ok(http.StatusCreated, *room)
}

func (s *RoomService) AddMember(ctx context.Context, roomID, userID uint) Result[models.RoomMember] {
	room, err := s.rooms.FindRoomByID(ctx, roomID)
	if err != nil {
		return Fail[models.RoomMember](s.fault(err, ErrAddMemberFailed, "room_id", roomID))
	}
	if room == nil {
		return Fail[models.RoomMember](ErrRoomNotFound)
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return Fail[models.RoomMember](s.fault(err, ErrAddMemberFailed, "user_id", userID))
	}
	if user == nil {
		return Fail[models.RoomMember](ErrUserNotFound)
	}

	isMember, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return Fail[models.RoomMember](s.fault(err, ErrAddMemberFailed, "room_id", roomID, "user_id", userID))
	}
	if isMember {
		return Fail[models.RoomMember](ErrAlreadyMember)
	}

	member, err := s.rooms.AddMember(ctx, roomID, userID)
	if errors.Is(err, models.ErrDuplicateMember) {
		// A concurrent add won the race past the membership check.
		return Fail[models.RoomMember](ErrAlreadyMember)
	}
	if err != nil {
		return Fail[models.RoomMember](s.fault(err, ErrAddMemberFailed, "room_id", roomID, "user_id", userID))
	}

	return Ok(http.StatusCreated, *member).WithEvent(Event{
		Name:     EventMemberAdded,
		Audience: RoomAudience(roomID),
		Payload:  MemberPayload{RoomID: roomID, UserID: userID, Timestamp: s.now().UTC()},
	})
}

func (s *RoomService) RemoveMember(ctx context.Context, roomID, userID uint) Result[NoContent] {
	room, err := s.rooms.FindRoomByID(ctx, roomID)
	if err != nil {
		return Fail[NoContent](s.fault(err, ErrRemoveMemberFailed, "room_id", roomID))
	}
	if room == nil {
		return Fail[NoContent](ErrRoomNotFound)
	}

	isMember, err := s.rooms.IsMember(ctx, roomID, userID)
	if err != nil {
		return Fail[NoContent](s.fault(err, ErrRemoveMemberFailed, "room_id", roomID, "user_id", userID))
	}
	if !isMember {
		return Fail[NoContent](ErrNotMember)
	}

	removed, err := s.rooms.RemoveMember(ctx, roomID, userID)
	if err != nil {
		return Fail[NoContent](s.fault(err, ErrRemoveMemberFailed, "room_id", roomID, "user_id", userID))
	}
	if !removed {
		return Fail[NoContent](ErrNotMember)
	}

	return Ok(http.StatusNoContent, NoContent{}).WithEvent(Event{
		Name:     EventMemberRemoved,
		Audience: RoomAudience(roomID),
		Payload:  MemberPayload{RoomID: roomID, UserID: userID, Timestamp: s.now().UTC()},
	})
}

// GetRoomMembers returns member user ids in no particular order.
func (s *RoomService) GetRoomMembers(ctx context.Context, roomID uint) Result[[]uint] {
	room, err := s.rooms.FindRoomByID(ctx, roomID)
	if err != nil {
		return Fail[[]uint](s.fault(err, ErrGetMembersFailed, "room_id", roomID))
	}
	if room == nil {
		return Fail[[]uint](ErrRoomNotFound)
	}

	members, err := s.rooms.ListMembers(ctx, roomID)
	if err != nil {
		return Fail[[]uint](s.fault(err, ErrGetMembersFailed, "room_id", roomID))
	}
	if members == nil {
		members = []uint{}
	}
	return Ok(http.StatusOK, members)
}
