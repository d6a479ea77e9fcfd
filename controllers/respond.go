package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/CUknot/roomchat/middleware"
	"github.com/CUknot/roomchat/services"
)

type publisher struct {
	events Broadcaster
	log    zerolog.Logger
}

// publish fans out evt. Delivery problems never change the HTTP response:
// the mutation is already committed.
func (p publisher) publish(ctx context.Context, evt services.Event) {
	if err := p.events.Publish(context.WithoutCancel(ctx), evt); err != nil {
		p.log.Warn().Err(err).
			Str("event", evt.Name).
			Stringer("audience", evt.Audience).
			Msg("event publish failed")
	}
}

// render writes res and, on success, publishes its event.
func render[T any](c *gin.Context, p *publisher, res services.Result[T]) {
	if f := res.Failure(); f != nil {
		c.JSON(f.Status, gin.H{"error": f.Message})
		return
	}

	if evt, ok := res.Event(); ok && p != nil {
		p.publish(c.Request.Context(), evt)
	}

	if res.Status() == http.StatusNoContent {
		c.Status(http.StatusNoContent)
		return
	}
	data, _ := res.Data()
	c.JSON(res.Status(), data)
}

func callerID(c *gin.Context) uint {
	return c.MustGet(middleware.UserIDKey).(uint)
}

// pathID parses a positive numeric path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + label})
		return 0, false
	}
	return uint(id), true
}
