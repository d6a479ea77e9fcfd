package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/CUknot/roomchat/metrics"
	"github.com/CUknot/roomchat/services"
)

type SendMessageInput struct {
	RoomID     uint   `json:"roomId" binding:"required" example:"1"`
	Text       string `json:"text" example:"Hello, everyone!"`
	ReceiverID *uint  `json:"receiverId" example:"2"`
	ReplyTo    *uint  `json:"replyTo"`
}

type TextInput struct {
	Text string `json:"text" example:"Edited text"`
}

// MessageController exposes the message lifecycle over HTTP. The caller is
// always the authenticated user.
type MessageController struct {
	messages *services.MessageService
	pub      *publisher
}

func NewMessageController(messages *services.MessageService, events Broadcaster, log zerolog.Logger) *MessageController {
	return &MessageController{
		messages: messages,
		pub:      &publisher{events: events, log: log.With().Str("controller", "message").Logger()},
	}
}

// SendMessage godoc
// @Summary Send a message to a room
// @Description Creates a message in a room the caller belongs to, optionally addressed to a member or replying to a message of the same room
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param message body SendMessageInput true "Message"
// @Success 201 {object} models.Message "Message sent"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Sender, room, receiver or original not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chat/send [post]
func (ctl *MessageController) SendMessage(c *gin.Context) {
	var input SendMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := ctl.messages.SendMessage(c.Request.Context(), services.SendMessageInput{
		SenderID:   callerID(c),
		Text:       input.Text,
		RoomID:     input.RoomID,
		ReceiverID: input.ReceiverID,
		ReplyTo:    input.ReplyTo,
	})
	if !res.Failed() {
		metrics.MessagesPosted.WithLabelValues("message").Inc()
	}
	render(c, ctl.pub, res)
}

// GetRoomMessages godoc
// @Summary Get room history
// @Description Returns every message of the room, oldest first
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param roomId path int true "Room ID"
// @Success 200 {array} models.Message
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chat/rooms/{roomId}/messages [get]
func (ctl *MessageController) GetRoomMessages(c *gin.Context) {
	roomID, ok := pathID(c, "roomId", "room id")
	if !ok {
		return
	}

	render(c, ctl.pub, ctl.messages.GetRoomMessages(c.Request.Context(), roomID, callerID(c)))
}

// EditMessage godoc
// @Summary Edit a message
// @Description Replaces the text of a message sent by the caller
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Param message body TextInput true "New text"
// @Success 200 {object} models.Message
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not the sender"
// @Failure 404 {object} map[string]string "Message not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chat/edit/{id} [put]
func (ctl *MessageController) EditMessage(c *gin.Context) {
	id, ok := pathID(c, "id", "message id")
	if !ok {
		return
	}
	var input TextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	render(c, ctl.pub, ctl.messages.EditMessage(c.Request.Context(), id, callerID(c), input.Text))
}

// DeleteMessage godoc
// @Summary Delete a message
// @Description Deletes a message sent by the caller together with its replies
// @Tags messages
// @Security BearerAuth
// @Param id path int true "Message ID"
// @Success 204
// @Failure 403 {object} map[string]string "Not the sender"
// @Failure 404 {object} map[string]string "Message not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chat/delete/{id} [delete]
func (ctl *MessageController) DeleteMessage(c *gin.Context) {
	id, ok := pathID(c, "id", "message id")
	if !ok {
		return
	}

	render(c, ctl.pub, ctl.messages.DeleteMessage(c.Request.Context(), id, callerID(c)))
}

// ReplyToMessage godoc
// @Summary Reply to a message
// @Description Posts a reply in the original message's room, addressed to its sender
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Original message ID"
// @Param message body TextInput true "Reply text"
// @Success 201 {object} models.Message
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Original message not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /api/chat/reply/{id} [post]
func (ctl *MessageController) ReplyToMessage(c *gin.Context) {
	id, ok := pathID(c, "id", "message id")
	if !ok {
		return
	}
	var input TextInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := ctl.messages.ReplyToMessage(c.Request.Context(), id, callerID(c), input.Text)
	if !res.Failed() {
		metrics.MessagesPosted.WithLabelValues("reply").Inc()
	}
	render(c, ctl.pub, res)
}
