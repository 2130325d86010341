package chat

import (
	"sync"
	"testing"

	"github.com/oklog/ulid/v2"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewTranscript_StartsWithSystemPrompt(t *testing.T) {
	tr := NewTranscript()

	msgs := tr.Messages()
	if len(msgs) != 1 {
		t.Fatalf("len = %d, want 1", len(msgs))
	}
	if msgs[0].Role != RoleSystem || msgs[0].Content != SystemPrompt {
		t.Errorf("first message = %+v, want system prompt", msgs[0])
	}
	if len(tr.Visible()) != 0 {
		t.Errorf("Visible() = %v, want empty", tr.Visible())
	}
}

func TestAppend_GrowsMonotonically(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "hello")
	tr.Append(RoleAssistant, "hi there")
	tr.Append(RoleUser, "what next?")

	msgs := tr.Messages()
	if len(msgs) != 4 {
		t.Fatalf("len = %d, want 4", len(msgs))
	}
	if msgs[0].Role != RoleSystem {
		t.Errorf("system prompt displaced: %+v", msgs[0])
	}
	wantRoles := []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser}
	for i, role := range wantRoles {
		if msgs[i].Role != role {
			t.Errorf("msgs[%d].Role = %q, want %q", i, msgs[i].Role, role)
		}
	}

	visible := tr.Visible()
	if len(visible) != 3 || visible[0].Content != "hello" || visible[2].Content != "what next?" {
		t.Errorf("Visible() = %+v", visible)
	}
}

func TestAppend_AssignsULIDs(t *testing.T) {
	tr := NewTranscript()
	m := tr.Append(RoleUser, "hello")

	if _, err := ulid.Parse(m.ID); err != nil {
		t.Errorf("ID %q is not a ULID: %v", m.ID, err)
	}
	if m.CreatedAt == 0 {
		t.Error("CreatedAt not set")
	}
}

func TestMessages_ReturnsCopy(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "hello")

	msgs := tr.Messages()
	msgs[1].Content = "edited"

	if tr.Messages()[1].Content != "hello" {
		t.Error("transcript was modified through returned slice")
	}
}

func TestAppend_Concurrent(t *testing.T) {
	tr := NewTranscript()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Append(RoleUser, "x")
		}()
	}
	wg.Wait()

	if tr.Len() != 51 {
		t.Errorf("Len() = %d, want 51", tr.Len())
	}
	if tr.Messages()[0].Role != RoleSystem {
		t.Error("system prompt is no longer first")
	}
}
