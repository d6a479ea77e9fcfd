package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/CUknot/roomchat/services"
)

type CreateRoomInput struct {
	Name string `json:"name" example:"General Chat"`
}

type AddMemberInput struct {
	UserID uint `json:"userId" binding:"required" example:"2"`
}

// RoomController manages rooms and their membership.
type RoomController struct {
	rooms *services.RoomService
	pub   *publisher
}

func NewRoomController(rooms *services.RoomService, events Broadcaster, log zerolog.Logger) *RoomController {
	return &RoomController{
		rooms: rooms,
		pub:   &publisher{events: events, log: log.With().Str("controller", "room").Logger()},
	}
}

// CreateRoom godoc
// @Summary Create a new chat room
// @Description Creates a new chat room with the authenticated user as its first member
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param room body CreateRoomInput true "Room Creation"
// @Success 201 {object} models.Room "Room created successfully"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Creator not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/create [post]
func (ctl *RoomController) CreateRoom(c *gin.Context) {
	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	render(c, ctl.pub, ctl.rooms.CreateRoom(c.Request.Context(), input.Name, callerID(c)))
}

// AddMember godoc
// @Summary Add a member to a room
// @Tags rooms
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param roomId path int true "Room ID"
// @Param member body AddMemberInput true "Member"
// @Success 201 {object} models.RoomMember
// @Failure 400 {object} map[string]string "Already a member"
// @Failure 404 {object} map[string]string "Room or user not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{roomId}/members [post]
func (ctl *RoomController) AddMember(c *gin.Context) {
	roomID, ok := pathID(c, "roomId", "room id")
	if !ok {
		return
	}
	var input AddMemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	render(c, ctl.pub, ctl.rooms.AddMember(c.Request.Context(), roomID, input.UserID))
}

// RemoveMember godoc
// @Summary Remove a member from a room
// @Tags rooms
// @Security BearerAuth
// @Param roomId path int true "Room ID"
// @Param userId path int true "User ID"
// @Success 204
// @Failure 404 {object} map[string]string "Room not found or user not a member"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{roomId}/members/{userId} [delete]
func (ctl *RoomController) RemoveMember(c *gin.Context) {
	roomID, ok := pathID(c, "roomId", "room id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId", "user id")
	if !ok {
		return
	}

	render(c, ctl.pub, ctl.rooms.RemoveMember(c.Request.Context(), roomID, userID))
}

// GetRoomMembers godoc
// @Summary List room members
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Param roomId path int true "Room ID"
// @Success 200 {array} integer "Member user ids"
// @Failure 404 {object} map[string]string "Room not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/rooms/{roomId}/members [get]
func (ctl *RoomController) GetRoomMembers(c *gin.Context) {
	roomID, ok := pathID(c, "roomId", "room id")
	if !ok {
		return
	}

	render(c, ctl.pub, ctl.rooms.GetRoomMembers(c.Request.Context(), roomID))
}
