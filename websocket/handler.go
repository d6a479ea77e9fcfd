package websocket

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/CUknot/roomchat/middleware"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins
	},
}

// Handler upgrades authenticated requests to hub clients.
type Handler struct {
	hub     *Hub
	tokens  middleware.TokenParser
	members MembershipChecker
	ctx     context.Context
}

// NewHandler builds the /ws endpoint. ctx bounds the lifetime of the
// membership lookups made by connected clients.
func NewHandler(ctx context.Context, hub *Hub, tokens middleware.TokenParser, members MembershipChecker) *Handler {
	return &Handler{hub: hub, tokens: tokens, members: members, ctx: ctx}
}

// HandleConnection handles websocket connections. Browsers cannot set headers
// on the upgrade request, so the token comes from the query string.
func (h *Handler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "bearer token missing"})
		return
	}
	userID, err := h.tokens.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.log.Warn().Err(err).Uint("user_id", userID).Msg("upgrade failed")
		return
	}

	client := newClient(h.hub, conn, userID, h.members)
	if !h.hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.log.Debug().Msg("connected")

	// Start goroutines for reading and writing
	go client.readPump(h.ctx)
	go client.writePump()
}
