package websocket

import (
	"encoding/json"
	"testing"
	"time"
)

func TestClientCanSee(t *testing.T) {
	tests := []struct {
		name    string
		client  Client
		event   Event
		visible bool
	}{
		{"admin sees unscoped", Client{Role: roleAdmin}, Event{Type: "x"}, true},
		{"admin sees scoped", Client{Role: roleAdmin}, Event{Type: "x", ContractorID: "c1"}, true},
		{"contractor sees own", Client{Role: roleContractor, Subject: "c1"}, Event{ContractorID: "c1"}, true},
		{"contractor skips others", Client{Role: roleContractor, Subject: "c1"}, Event{ContractorID: "c2"}, false},
		{"contractor skips unassigned", Client{Role: roleContractor, Subject: "c1"}, Event{}, false},
		{"unknown role", Client{Role: "client"}, Event{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.client.canSee(tt.event); got != tt.visible {
				t.Errorf("canSee: got %v, want %v", got, tt.visible)
			}
		})
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	hub := NewHub() // Run is not started, so nothing drains the queue
	done := make(chan struct{})
	go func() {
		for i := 0; i < eventQueueSize+10; i++ {
			hub.Publish(Event{Type: "project_update"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full queue")
	}
}

func TestRunDeliversScopedEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := &Client{Hub: hub, Send: make(chan []byte, 4), Role: roleAdmin, Subject: "u1"}
	contractor := &Client{Hub: hub, Send: make(chan []byte, 4), Role: roleContractor, Subject: "c1"}
	hub.register <- admin
	hub.register <- contractor

	hub.Publish(Event{Type: "project_update", Data: map[string]string{"order_id": "VS123ABC"}, ContractorID: "c2"})
	hub.Publish(Event{Type: "project_update", Data: map[string]string{"order_id": "VS999XYZ"}, ContractorID: "c1"})

	for i, want := range []string{"VS123ABC", "VS999XYZ"} {
		select {
		case raw := <-admin.Send:
			var got struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			if err := json.Unmarshal(raw, &got); err != nil {
				t.Fatalf("admin message %d: %v", i, err)
			}
			if got.Data["order_id"] != want {
				t.Errorf("admin message %d: got %q, want %q", i, got.Data["order_id"], want)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("admin message %d never arrived", i)
		}
	}

	select {
	case raw := <-contractor.Send:
		var got struct {
			Data map[string]string `json:"data"`
		}
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatal(err)
		}
		if got.Data["order_id"] != "VS999XYZ" {
			t.Errorf("contractor got %q, want only its own project", got.Data["order_id"])
		}
	case <-time.After(2 * time.Second):
		t.Fatal("contractor message never arrived")
	}
	select {
	case raw := <-contractor.Send:
		t.Errorf("contractor received a foreign event: %s", raw)
	default:
	}
}
