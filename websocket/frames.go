package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// Inbound frame types.
const (
	FrameJoinRoom  = "joinRoom"
	FrameLeaveRoom = "leaveRoom"
	FrameError     = "error"
)

var errInvalidRoomID = errors.New("invalid room id")

// MembershipChecker decides whether a user may subscribe to a room.
type MembershipChecker interface {
	IsMember(ctx context.Context, roomID, userID uint) (bool, error)
}

type inboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roomAck struct {
	RoomID uint `json:"roomId"`
}

// handleFrame processes one inbound frame. Problems are reported to the
// client as error frames; the connection stays open.
func (c *Client) handleFrame(ctx context.Context, data []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.reply(FrameError, "malformed frame")
		return
	}

	switch frame.Type {
	case FrameJoinRoom:
		roomID, err := parseRoomID(frame.Payload)
		if err != nil {
			c.reply(FrameError, err.Error())
			return
		}
		isMember, err := c.members.IsMember(ctx, roomID, c.userID)
		if err != nil {
			c.log.Error().Err(err).Uint("room_id", roomID).Msg("membership lookup failed")
			c.reply(FrameError, "failed to join room")
			return
		}
		if !isMember {
			c.reply(FrameError, "user is not a member of this room")
			return
		}
		c.hub.joinRoom(c, roomID)
		c.log.Debug().Uint("room_id", roomID).Msg("joined room")
		c.reply(FrameJoinRoom, roomAck{RoomID: roomID})
	case FrameLeaveRoom:
		roomID, err := parseRoomID(frame.Payload)
		if err != nil {
			c.reply(FrameError, err.Error())
			return
		}
		c.hub.leaveRoom(c, roomID)
		c.log.Debug().Uint("room_id", roomID).Msg("left room")
		c.reply(FrameLeaveRoom, roomAck{RoomID: roomID})
	default:
		c.reply(FrameError, "unknown frame type")
	}
}

// parseRoomID accepts the room id as a JSON number or a numeric string.
func parseRoomID(raw json.RawMessage) (uint, error) {
	var id uint64
	if err := json.Unmarshal(raw, &id); err == nil && id > 0 {
		return uint(id), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errInvalidRoomID
	}
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidRoomID
	}
	return uint(id), nil
}
