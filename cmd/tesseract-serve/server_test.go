package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/tesseract/config"
	"github.com/lixenwraith/tesseract/status"
)

func testServer(t *testing.T) (*httptest.Server, *server) {
	t.Helper()
	cfg := config.Default()
	cfg.Serve.Columns = 24
	cfg.Serve.FrameInterval = 10 * time.Millisecond
	srv := newServer(cfg, 3, status.NewRegistry())
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts, srv
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		t.Fatalf("failed to open websocket connection: %v", err)
	}
	t.Cleanup(func() {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
		if resp != nil {
			resp.Body.Close()
		}
	})
	return conn
}

// readUntil reads frames until ok accepts one or the deadline passes
func readUntil(t *testing.T, conn *websocket.Conn, ok func(FrameMessage) bool) FrameMessage {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	conn.SetReadDeadline(deadline)
	for time.Now().Before(deadline) {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		var f FrameMessage
		if err := json.Unmarshal(payload, &f); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		if ok(f) {
			return f
		}
	}
	t.Fatal("no matching frame before the deadline")
	return FrameMessage{}
}

func TestStream_FirstFrame(t *testing.T) {
	ts, _ := testServer(t)
	conn := dial(t, ts, "?seed=4")

	f := readUntil(t, conn, func(FrameMessage) bool { return true })
	if f.Type != "frame" || f.Seed != 4 || f.Version != 1 {
		t.Errorf("frame header %+v", f)
	}
	if len(f.Columns) != 24 {
		t.Fatalf("got %d columns", len(f.Columns))
	}
	if f.Context != "normal" || f.Reality != 1 {
		t.Errorf("traveler %s at reality %v", f.Context, f.Reality)
	}
	for i, c := range f.Columns {
		if c.Outcome == "" || c.Kind == "" || !strings.HasPrefix(c.Color, "#") {
			t.Errorf("column %d incomplete: %+v", i, c)
		}
	}
}

func TestStream_Commands(t *testing.T) {
	ts, _ := testServer(t)
	conn := dial(t, ts, "")

	first := readUntil(t, conn, func(FrameMessage) bool { return true })

	if err := conn.WriteJSON(ClientCommand{Type: CommandConfigure, Columns: 5000}); err != nil {
		t.Fatal(err)
	}
	f := readUntil(t, conn, func(f FrameMessage) bool { return f.Notice != "" })
	if len(f.Columns) != maxColumns {
		t.Errorf("configure gave %d columns, want the cap %d", len(f.Columns), maxColumns)
	}

	if err := conn.WriteJSON(ClientCommand{Type: CommandInput, Turn: 1}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(f FrameMessage) bool { return f.Heading != first.Heading })

	if err := conn.WriteJSON(ClientCommand{Type: CommandRegenerate, Seed: 9}); err != nil {
		t.Fatal(err)
	}
	f = readUntil(t, conn, func(f FrameMessage) bool { return f.Seed == 9 })
	if f.Version != 2 {
		t.Errorf("version after regenerate = %d", f.Version)
	}

	if err := conn.WriteJSON(ClientCommand{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	f = readUntil(t, conn, func(f FrameMessage) bool { return f.Notice != "" })
	if !strings.Contains(f.Notice, "dance") {
		t.Errorf("notice = %q", f.Notice)
	}
}

func TestHandleWS_BadSeed(t *testing.T) {
	ts, _ := testServer(t)
	resp, err := http.Get(ts.URL + "/ws?seed=banana")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestSchemaAndMetrics(t *testing.T) {
	ts, _ := testServer(t)

	resp, err := http.Get(ts.URL + "/schema")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		t.Fatalf("schema is not JSON: %v", err)
	}
	if doc["title"] != "Tesseract column stream" {
		t.Errorf("title = %v", doc["title"])
	}
	for _, field := range []string{`"command"`, `"frame"`, `"columns"`, `"regenerate"`} {
		if !strings.Contains(string(body), field) {
			t.Errorf("schema lacks %s", field)
		}
	}

	conn := dial(t, ts, "")
	readUntil(t, conn, func(FrameMessage) bool { return true })

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if m[status.KeyClients] != float64(1) {
		t.Errorf("clients = %v", m[status.KeyClients])
	}
	if rays, _ := m[status.KeyRays].(float64); rays < 24 {
		t.Errorf("rays = %v", m[status.KeyRays])
	}

	resp, err = http.Get(ts.URL + "/metrics?section=serve")
	if err != nil {
		t.Fatal(err)
	}
	m = nil
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if _, ok := m[status.KeyClients]; !ok {
		t.Errorf("serve section lacks clients: %v", m)
	}
	if _, ok := m[status.KeyRays]; ok {
		t.Errorf("serve section leaked march keys: %v", m)
	}
}
