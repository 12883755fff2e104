package telemetry

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"printcore/internal/log"
)

func TestServerStreamsPublishedEvents(t *testing.T) {
	hub := NewHub()
	defer hub.Stop()

	srv := NewServer(hub, log.New("telemetry-test", log.ERROR, ""))
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Give the server time to register the client before publishing.
	time.Sleep(20 * time.Millisecond)
	hub.Publish(Event{Kind: "discovery", Line: "network dnssd://foo ..."})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got wireMessage
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if got.Kind != "discovery" || got.Line != "network dnssd://foo ..." {
		t.Fatalf("unexpected message: %+v", got)
	}
}
