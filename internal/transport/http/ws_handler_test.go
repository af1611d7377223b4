package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"longevity-frame/internal/domain"
)

type leaderboardMessage struct {
	Type    string                    `json:"type"`
	Payload []domain.LeaderboardEntry `json:"payload"`
}

func TestLeaderboardStream(t *testing.T) {
	env := newTestEnv(t)

	u := "ws" + env.server.URL[len("http"):] + "/ws/leaderboard?limit=5"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readLeaderboard(t, conn)
	if len(initial.Payload) != 0 {
		t.Fatalf("expected an empty initial snapshot, got %+v", initial.Payload)
	}

	bearer := env.token(t, 5, "carol")
	body := `{"answers":[{"questionId":1,"answerIndex":2},{"questionId":2,"answerIndex":2}]}`
	resp, data := env.do(t, http.MethodPost, "/api/user/scores", bearer, strings.NewReader(body), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status %d: %s", resp.StatusCode, data)
	}

	update := readLeaderboard(t, conn)
	if len(update.Payload) != 1 {
		t.Fatalf("expected one entry after save, got %+v", update.Payload)
	}
	if update.Payload[0].UserID != 5 || update.Payload[0].Username != "carol" {
		t.Fatalf("unexpected entry %+v", update.Payload[0])
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) leaderboardMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg leaderboardMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", raw)
	}
	return msg
}
