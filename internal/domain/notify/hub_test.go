package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"funnelwerk/internal/domain/lead"
)

func dialHub(t *testing.T, hub *Hub, connID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		hub.Register(connID, conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestHub_LeadCreatedBroadcast(t *testing.T) {
	hub := NewHub()
	client := dialHub(t, hub, "conn-1")

	hub.LeadCreated(&lead.Submission{
		ID:             42,
		FunnelID:       "elektriker-projekt",
		Classification: "hot",
		TotalScore:     85,
		Contact:        lead.Contact{Name: "Max Mustermann"},
		SubmittedAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(time.Second)))
	var event LeadEvent
	require.NoError(t, client.ReadJSON(&event))

	assert.Equal(t, "lead.created", event.Type)
	assert.Equal(t, int64(42), event.LeadID)
	assert.Equal(t, "elektriker-projekt", event.FunnelID)
	assert.Equal(t, "hot", event.Classification)
	assert.Equal(t, 85, event.TotalScore)
	assert.Equal(t, "Max Mustermann", event.ContactName)
}

func TestHub_UnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	client := dialHub(t, hub, "conn-1")

	assert.Equal(t, 1, hub.ClientCount())
	hub.Unregister("conn-1")
	assert.Equal(t, 0, hub.ClientCount())

	// Broadcast after unregister must not panic and reaches nobody.
	hub.LeadCreated(&lead.Submission{ID: 1})

	require.NoError(t, client.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := client.ReadMessage()
	assert.Error(t, err)
}

func TestHub_RegisterReplacesExistingConnection(t *testing.T) {
	hub := NewHub()
	dialHub(t, hub, "conn-1")
	dialHub(t, hub, "conn-1")

	assert.Equal(t, 1, hub.ClientCount())
}
