package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/taskward-dev/taskward/internal/realtime"
)

// dialWS opens an authenticated realtime connection and consumes the
// welcome frame.
func dialWS(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Origin", "http://localhost:3000")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("websocket dial error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	var welcome realtime.Event
	if err := readFrame(conn, &welcome); err != nil {
		t.Fatalf("failed to read welcome frame: %v", err)
	}
	if welcome.Type != "connected" {
		t.Fatalf("welcome frame type = %q, expected connected", welcome.Type)
	}

	return conn
}

func readFrame(conn *websocket.Conn, event *realtime.Event) error {
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		return err
	}
	return conn.ReadJSON(event)
}

func joinProject(t *testing.T, conn *websocket.Conn, projectID uint) {
	t.Helper()

	err := conn.WriteJSON(map[string]interface{}{"type": "join-project", "project": projectID})
	if err != nil {
		t.Fatalf("failed to send join frame: %v", err)
	}

	var reply realtime.Event
	if err := readFrame(conn, &reply); err != nil {
		t.Fatalf("failed to read join reply: %v", err)
	}
	if reply.Type != "joined" || reply.Project != projectID {
		t.Fatalf("join reply = %+v, expected joined for project %d", reply, projectID)
	}
}

func TestWS_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/ws"

	header := http.Header{}
	header.Set("Origin", "http://localhost:3000")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err == nil {
		t.Fatal("dial without a token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("handshake response = %v, expected 401", resp)
	}
}

func TestWS_JoinRequiresViewAccess(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	creator, _ := env.createUser(t, "Creator", "creator@example.com", "supersecret1", true)
	_, strangerToken := env.createUser(t, "Stranger", "stranger@example.com", "supersecret1", true)

	project := env.createProject(t, creator.ID, "private")

	conn := dialWS(t, server, strangerToken)

	err := conn.WriteJSON(map[string]interface{}{"type": "join-project", "project": project.ID})
	if err != nil {
		t.Fatalf("failed to send join frame: %v", err)
	}

	var reply realtime.Event
	if err := readFrame(conn, &reply); err != nil {
		t.Fatalf("failed to read join reply: %v", err)
	}
	if reply.Type != "error" {
		t.Errorf("join reply type = %q, expected error", reply.Type)
	}
}

func TestWS_JoinReplyDuringEventStream(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	creator, creatorToken := env.createUser(t, "Creator", "creator@example.com", "supersecret1", true)
	collaborator, collabToken := env.createUser(t, "Collab", "collab@example.com", "supersecret1", true)

	project := env.createProject(t, creator.ID, "busy")
	otherProject := env.createProject(t, creator.ID, "quiet")
	env.addCollaborator(t, project.ID, collaborator.ID)
	env.addCollaborator(t, otherProject.ID, collaborator.ID)

	sender := dialWS(t, server, creatorToken)
	receiver := dialWS(t, server, collabToken)

	joinProject(t, sender, project.ID)
	joinProject(t, receiver, project.ID)

	// stream events at the receiver while it negotiates a second join
	payload := fmt.Sprintf(`{"id":9,"name":"churn","state":false,"project":{"id":%d}}`, project.ID)
	streamDone := make(chan struct{})
	go func() {
		defer close(streamDone)
		for i := 0; i < 20; i++ {
			err := sender.WriteJSON(map[string]interface{}{
				"type": realtime.EventTaskUpdated,
				"task": json.RawMessage(payload),
			})
			if err != nil {
				return
			}
		}
	}()

	err := receiver.WriteJSON(map[string]interface{}{"type": "join-project", "project": otherProject.ID})
	if err != nil {
		t.Fatalf("failed to send join frame: %v", err)
	}

	var sawJoined bool
	var events int
	for i := 0; i < 50 && !sawJoined; i++ {
		var frame realtime.Event
		if err := readFrame(receiver, &frame); err != nil {
			t.Fatalf("read error before the join reply arrived: %v", err)
		}
		switch frame.Type {
		case "joined":
			if frame.Project != otherProject.ID {
				t.Errorf("joined project = %d, expected %d", frame.Project, otherProject.ID)
			}
			sawJoined = true
		case realtime.EventTaskUpdated:
			events++
		default:
			t.Errorf("unexpected frame type %q", frame.Type)
		}
	}
	<-streamDone

	if !sawJoined {
		t.Error("join reply never arrived amid the event stream")
	}
}

func TestWS_RelaysTaskEventsToProjectChannel(t *testing.T) {
	env := newTestEnv(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	creator, creatorToken := env.createUser(t, "Creator", "creator@example.com", "supersecret1", true)
	collaborator, collabToken := env.createUser(t, "Collab", "collab@example.com", "supersecret1", true)

	project := env.createProject(t, creator.ID, "shared")
	env.addCollaborator(t, project.ID, collaborator.ID)
	otherProject := env.createProject(t, creator.ID, "other")

	sender := dialWS(t, server, creatorToken)
	receiver := dialWS(t, server, collabToken)
	bystander := dialWS(t, server, creatorToken)

	joinProject(t, sender, project.ID)
	joinProject(t, receiver, project.ID)
	joinProject(t, bystander, otherProject.ID)

	payload := fmt.Sprintf(`{"id":1,"name":"ship it","state":false,"project":{"id":%d}}`, project.ID)
	err := sender.WriteJSON(map[string]interface{}{
		"type": realtime.EventTaskCreated,
		"task": json.RawMessage(payload),
	})
	if err != nil {
		t.Fatalf("failed to send task event: %v", err)
	}

	var received realtime.Event
	if err := readFrame(receiver, &received); err != nil {
		t.Fatalf("collaborator did not receive the event: %v", err)
	}
	if received.Type != realtime.EventTaskCreated {
		t.Errorf("event type = %q, expected %q", received.Type, realtime.EventTaskCreated)
	}
	var task struct {
		Name    string `json:"name"`
		Project struct {
			ID uint `json:"id"`
		} `json:"project"`
	}
	if err := json.Unmarshal(received.Task, &task); err != nil {
		t.Fatalf("failed to decode relayed task: %v", err)
	}
	if task.Name != "ship it" || task.Project.ID != project.ID {
		t.Errorf("relayed task = %+v", task)
	}

	// the sender gets no echo and other channels stay quiet
	var stray realtime.Event
	if err := readFrame(sender, &stray); err == nil {
		t.Errorf("sender received its own event: %+v", stray)
	}
	if err := readFrame(bystander, &stray); err == nil {
		t.Errorf("subscriber of another project received the event: %+v", stray)
	}
}
