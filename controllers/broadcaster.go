//go:generate go run go.uber.org/mock/mockgen -source=broadcaster.go -destination=../mocks/mock_broadcaster.go -package=mocks
package controllers

import (
	"context"

	"github.com/CUknot/roomchat/services"
)

// Broadcaster delivers service events to live subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, event services.Event) error
}
