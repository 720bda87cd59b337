package core

import "testing"

func TestTranscript_AppendAndCopy(t *testing.T) {
	tr := NewTranscript("conv-1")

	if _, ok := tr.Last(); ok {
		t.Error("empty transcript should have no last message")
	}

	tr.Append(NewMessage("Gemini", "hello"))
	tr.Append(NewMessage("Muse", "hi there"))

	if tr.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", tr.Len())
	}

	last, ok := tr.Last()
	if !ok || last.Speaker != "Muse" {
		t.Errorf("expected last speaker Muse, got %+v", last)
	}

	all := tr.All()
	orig := all[0].Text
	all[0].Text = "changed"
	if tr.All()[0].Text != orig {
		t.Error("messages slice should be copied on read")
	}
}

func TestTranscript_Clone(t *testing.T) {
	tr := NewTranscript("conv-2")
	tr.Append(NewMessage("Gemini", "opening"))

	clone := tr.Clone()
	if clone == tr {
		t.Error("Clone should be a different pointer")
	}

	clone.Append(NewMessage("Muse", "reply"))
	if tr.Len() != 1 {
		t.Error("original should not see clone's appended message")
	}
}

func TestNewMessage_UniqueOrderable(t *testing.T) {
	m1 := NewMessage("Gemini", "a")
	m2 := NewMessage("Gemini", "b")
	if m1.ID == m2.ID {
		t.Error("message ids must be unique")
	}
	if m1.CreatedAt.IsZero() || m2.CreatedAt.Before(m1.CreatedAt) {
		t.Errorf("timestamps must be monotone non-decreasing: %v then %v", m1.CreatedAt, m2.CreatedAt)
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateIdle:     "idle",
		StateThinking: "thinking",
		StateStopped:  "stopped",
		State(42):     "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
