package services

import (
	"fmt"
	"time"
)

// Event names as seen by socket clients.
const (
	EventMessageSent    = "messageSent"
	EventMessageEdited  = "messageEdited"
	EventMessageDeleted = "messageDeleted"
	EventMessageReplied = "messageReplied"
	EventMemberAdded    = "memberAdded"
	EventMemberRemoved  = "memberRemoved"
)

type AudienceKind string

const (
	AudienceRoom AudienceKind = "room"
	AudienceUser AudienceKind = "user"
)

// Audience names the live subscribers an event is delivered to.
type Audience struct {
	Kind AudienceKind `json:"kind"`
	ID   uint         `json:"id"`
}

func RoomAudience(roomID uint) Audience {
	return Audience{Kind: AudienceRoom, ID: roomID}
}

func UserAudience(userID uint) Audience {
	return Audience{Kind: AudienceUser, ID: userID}
}

func (a Audience) String() string {
	return fmt.Sprintf("%s:%d", a.Kind, a.ID)
}

// Event is the (audience, name, payload) triple a successful mutation emits.
type Event struct {
	Name     string
	Audience Audience
	Payload  any
}

type MessageDeletedPayload struct {
	ID     uint `json:"id"`
	RoomID uint `json:"room_id"`
}

type MemberPayload struct {
	RoomID    uint      `json:"roomId"`
	UserID    uint      `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}
