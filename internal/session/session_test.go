package session

import (
	"fmt"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewStoreValidation(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := NewStore(n); err == nil {
			t.Errorf("NewStore(%d) should fail", n)
		}
	}
	if _, err := NewStore(2); err != nil {
		t.Fatalf("NewStore(2) error: %v", err)
	}
}

func TestHistoryUnknownSession(t *testing.T) {
	s, _ := NewStore(2)
	if got := s.History("missing"); got != nil {
		t.Errorf("History(missing) = %v, want nil", got)
	}
	if got := s.FormattedHistory("missing"); got != "" {
		t.Errorf("FormattedHistory(missing) = %q, want empty", got)
	}
}

func TestAddExchangeEvictsOldest(t *testing.T) {
	s, _ := NewStore(2)
	id := s.NewSessionID()

	s.AddExchange(id, "q1", "a1")
	s.AddExchange(id, "q2", "a2")
	s.AddExchange(id, "q3", "a3")

	got := s.History(id)
	if len(got) != 2 {
		t.Fatalf("history length = %d, want 2", len(got))
	}
	if got[0].Query != "q2" || got[1].Query != "q3" {
		t.Errorf("history = %+v, want oldest evicted first", got)
	}
}

func TestFormattedHistory(t *testing.T) {
	s, _ := NewStore(3)
	id := s.NewSessionID()
	s.AddExchange(id, "What is MCP?", "A protocol.")
	s.AddExchange(id, "Who teaches it?", "Jane Doe.")

	want := "User: What is MCP?\nAssistant: A protocol.\nUser: Who teaches it?\nAssistant: Jane Doe."
	if got := s.FormattedHistory(id); got != want {
		t.Errorf("FormattedHistory:\n%q\nwant:\n%q", got, want)
	}
}

func TestSessionIsolation(t *testing.T) {
	s, _ := NewStore(2)
	a, b := s.NewSessionID(), s.NewSessionID()
	if a == b {
		t.Fatal("session ids must be unique")
	}

	s.AddExchange(a, "qa", "aa")
	s.AddExchange(b, "qb", "ab")

	if got := s.History(a); len(got) != 1 || got[0].Query != "qa" {
		t.Errorf("session a history = %+v", got)
	}
	if got := s.History(b); len(got) != 1 || got[0].Query != "qb" {
		t.Errorf("session b history = %+v", got)
	}
}

func TestHistoryReturnsCopy(t *testing.T) {
	s, _ := NewStore(2)
	id := s.NewSessionID()
	s.AddExchange(id, "q", "a")

	got := s.History(id)
	got[0].Query = "mutated"

	if s.History(id)[0].Query != "q" {
		t.Error("History must return a copy")
	}
}

func TestClear(t *testing.T) {
	s, _ := NewStore(2)
	id := s.NewSessionID()
	s.AddExchange(id, "q", "a")
	s.Clear(id)

	if got := s.History(id); got != nil {
		t.Errorf("history after Clear = %v", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s, _ := NewStore(4)
	id := s.NewSessionID()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.AddExchange(id, fmt.Sprintf("q%d", n), "a")
			s.History(id)
			s.FormattedHistory(id)
		}(i)
	}
	wg.Wait()

	if got := len(s.History(id)); got != 4 {
		t.Errorf("history length = %d, want capped at 4", got)
	}
}
