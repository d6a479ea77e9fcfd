package websocket

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/CUknot/roomchat/services"
)

func TestEnvelope_FrameMatchesLocalDelivery(t *testing.T) {
	evt := services.Event{
		Name:     services.EventMemberRemoved,
		Audience: services.RoomAudience(10),
		Payload:  services.MemberPayload{RoomID: 10, UserID: 2, Timestamp: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	data, err := encodeEnvelope(evt)
	require.NoError(t, err)
	decoded, err := decodeEnvelope(data)
	require.NoError(t, err)
	require.Equal(t, evt.Name, decoded.Name)
	require.Equal(t, evt.Audience, decoded.Audience)

	// A relayed event must reach clients byte-for-byte like a local one.
	local := NewHub(zerolog.Nop())
	relayed := NewHub(zerolog.Nop())
	a := newTestClient(t, local, 2, memberSet{})
	b := newTestClient(t, relayed, 2, memberSet{})
	local.joinRoom(a, 10)
	relayed.joinRoom(b, 10)

	require.NoError(t, local.deliver(evt))
	require.NoError(t, relayed.deliver(decoded))
	require.JSONEq(t, string(<-a.send), string(<-b.send))
}

func TestDecodeEnvelope_Rejects(t *testing.T) {
	_, err := decodeEnvelope([]byte(`not json`))
	require.Error(t, err)
	_, err = decodeEnvelope([]byte(`{"audience":{"kind":"room","id":1}}`))
	require.Error(t, err)
}

func TestRedisRelay(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := DialRedis(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	hub := NewHub(zerolog.Nop())
	c := newTestClient(t, hub, 1, memberSet{})
	relay := NewRedisRelay(client, "test:events:"+time.Now().Format("150405.000"), hub, zerolog.Nop())

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go relay.Run(runCtx)

	// Publish until the subscription is live.
	require.Eventually(t, func() bool {
		err := relay.Publish(ctx, services.Event{
			Name: services.EventMessageDeleted, Audience: services.UserAudience(1), Payload: map[string]uint{"id": 3},
		})
		if err != nil {
			return false
		}
		select {
		case data := <-c.send:
			return strings.Contains(string(data), `"messageDeleted"`)
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 4*time.Second, 50*time.Millisecond)
}
