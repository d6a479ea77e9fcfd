package services_test

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/CUknot/roomchat/models"
	"github.com/CUknot/roomchat/services"
)

// memStore is an in-memory implementation of all three stores.
type memStore struct {
	mu       sync.Mutex
	nextID   uint
	users    map[uint]models.User
	rooms    map[uint]models.Room
	members  map[[2]uint]models.RoomMember
	messages map[uint]models.Message
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[uint]models.User{},
		rooms:    map[uint]models.Room{},
		members:  map[[2]uint]models.RoomMember{},
		messages: map[uint]models.Message{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) FindUserByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (s *memStore) FindUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return models.ErrDuplicateUsername
		}
	}
	user.ID = s.id()
	s.users[user.ID] = *user
	return nil
}

func (s *memStore) CreateRoomWithCreator(_ context.Context, name string, creatorID uint) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := models.Room{ID: s.id(), Name: name, CreatedAt: time.Now()}
	s.rooms[room.ID] = room
	s.members[[2]uint{room.ID, creatorID}] = models.RoomMember{RoomID: room.ID, UserID: creatorID}
	return &room, nil
}

func (s *memStore) FindRoomByID(_ context.Context, id uint) (*models.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[id]; ok {
		return &r, nil
	}
	return nil, nil
}

func (s *memStore) IsMember(_ context.Context, roomID, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[[2]uint{roomID, userID}]
	return ok, nil
}

func (s *memStore) AddMember(_ context.Context, roomID, userID uint) (*models.RoomMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint{roomID, userID}
	if _, ok := s.members[key]; ok {
		return nil, models.ErrDuplicateMember
	}
	m := models.RoomMember{RoomID: roomID, UserID: userID, CreatedAt: time.Now()}
	s.members[key] = m
	return &m, nil
}

func (s *memStore) RemoveMember(_ context.Context, roomID, userID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]uint{roomID, userID}
	_, ok := s.members[key]
	delete(s.members, key)
	return ok, nil
}

func (s *memStore) ListMembers(_ context.Context, roomID uint) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uint
	for key := range s.members {
		if key[0] == roomID {
			ids = append(ids, key[1])
		}
	}
	return ids, nil
}

func (s *memStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	m.CreatedAt = time.Now()
	s.messages[m.ID] = *m
	return nil
}

func (s *memStore) FindMessageByID(_ context.Context, id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.messages[id]; ok {
		return &m, nil
	}
	return nil, nil
}

func (s *memStore) ListRoomMessages(_ context.Context, roomID uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpdateMessageText(_ context.Context, id uint, text string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, nil
	}
	m.Text = text
	s.messages[id] = m
	return &m, nil
}

func (s *memStore) DeleteMessage(_ context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.messages[id]; !ok {
		return false, nil
	}
	delete(s.messages, id)
	for mid, m := range s.messages {
		if m.ReplyTo != nil && *m.ReplyTo == id {
			delete(s.messages, mid)
		}
	}
	return true, nil
}

func TestRoomChatScenario(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := newMemStore()
	rooms := services.NewRoomService(store, store, zerolog.Nop())
	messages := services.NewMessageService(store, store, store, zerolog.Nop())

	alice := models.User{Username: "alice"}
	bob := models.User{Username: "bob"}
	req.NoError(store.CreateUser(ctx, &alice))
	req.NoError(store.CreateUser(ctx, &bob))

	created := rooms.CreateRoom(ctx, "Team", alice.ID)
	req.Equal(http.StatusCreated, created.Status())
	room, _ := created.Data()
	isMember, _ := store.IsMember(ctx, room.ID, alice.ID)
	req.True(isMember, "creator becomes a member")

	req.Equal(http.StatusCreated, rooms.AddMember(ctx, room.ID, bob.ID).Status())
	req.Equal(http.StatusBadRequest, rooms.AddMember(ctx, room.ID, bob.ID).Status())

	sent := messages.SendMessage(ctx, services.SendMessageInput{SenderID: bob.ID, Text: "hi", RoomID: room.ID})
	req.Equal(http.StatusCreated, sent.Status())
	msg, _ := sent.Data()
	req.Equal(bob.ID, msg.SenderID)

	req.Equal(http.StatusForbidden, messages.EditMessage(ctx, msg.ID, alice.ID, "hacked").Status())

	edited := messages.EditMessage(ctx, msg.ID, bob.ID, "hi there")
	req.Equal(http.StatusOK, edited.Status())
	editedMsg, _ := edited.Data()
	req.Equal("hi there", editedMsg.Text)

	reply := messages.ReplyToMessage(ctx, msg.ID, alice.ID, "welcome")
	req.Equal(http.StatusCreated, reply.Status())
	replyMsg, _ := reply.Data()
	req.Equal(bob.ID, *replyMsg.ReceiverID)

	missing := messages.ReplyToMessage(ctx, 9999, alice.ID, "hello?")
	req.Equal(http.StatusNotFound, missing.Status())
	req.Equal("original message not found", missing.Failure().Message)

	history, _ := messages.GetRoomMessages(ctx, room.ID, alice.ID).Data()
	req.Len(history, 2)
	req.Equal(msg.ID, history[0].ID)

	req.Equal(http.StatusNoContent, rooms.RemoveMember(ctx, room.ID, bob.ID).Status())
	req.Equal(http.StatusForbidden,
		messages.SendMessage(ctx, services.SendMessageInput{SenderID: bob.ID, Text: "still here?", RoomID: room.ID}).Status())
	req.Equal(http.StatusForbidden, messages.ReplyToMessage(ctx, replyMsg.ID, bob.ID, "yes").Status())

	req.Equal(http.StatusNoContent, messages.DeleteMessage(ctx, msg.ID, bob.ID).Status())
	req.Equal(http.StatusNotFound, messages.DeleteMessage(ctx, msg.ID, bob.ID).Status())
	gone, _ := store.FindMessageByID(ctx, replyMsg.ID)
	req.Nil(gone, "replies cascade with their original")
}
