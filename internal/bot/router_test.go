package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"spotibot/internal/bus"
	"spotibot/internal/domain"
	"spotibot/internal/locale"
)

type fakeUsers struct {
	mu       sync.Mutex
	existing map[int64]bool
	inserts  []int64
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{existing: make(map[int64]bool)}
}

func (f *fakeUsers) Exists(_ context.Context, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[userID], nil
}

func (f *fakeUsers) Insert(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existing[userID] = true
	f.inserts = append(f.inserts, userID)
	return nil
}

func (f *fakeUsers) Close() error { return nil }

func newTestRouter(transport *fakeTransport, engine domain.Catalog, users domain.UserStore) (*Router, *bus.InMemoryBus) {
	logger := testLogger()
	b := bus.New(10, logger)
	o := NewOrchestrator(transport, engine, NewNotifier(transport, logger), locale.NewTable(), 2, logger)
	return NewRouter(b, o, transport, users, locale.NewTable(), 3, logger), b
}

func runDrained(t *testing.T, r *Router, b *bus.InMemoryBus, msgs ...domain.InboundMessage) {
	t.Helper()
	for _, m := range msgs {
		b.Publish(m)
	}
	b.Close()

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("router did not drain in time")
	}
}

func TestRouter_StartRegistersUserAndWelcomes(t *testing.T) {
	transport := &fakeTransport{}
	users := newFakeUsers()
	r, b := newTestRouter(transport, &fakeCatalog{}, users)

	runDrained(t, r, b, inbound("/start"))

	if len(users.inserts) != 1 || users.inserts[0] != 42 {
		t.Fatalf("expected user 42 registered once, got %v", users.inserts)
	}
	if len(transport.calls) != 1 {
		t.Fatalf("expected one welcome reply, got %v", transport.calls)
	}
	if !strings.Contains(transport.calls[0], "Hello, @tester!") {
		t.Fatalf("welcome should greet by username, got %q", transport.calls[0])
	}
}

func TestRouter_StartIsIdempotent(t *testing.T) {
	transport := &fakeTransport{}
	users := newFakeUsers()
	users.existing[42] = true
	r, b := newTestRouter(transport, &fakeCatalog{}, users)

	runDrained(t, r, b, inbound("/start"))

	if len(users.inserts) != 0 {
		t.Fatalf("known user must not be re-inserted, got %v", users.inserts)
	}
	if got := transport.count("reply:"); got != 1 {
		t.Fatalf("known user still gets the welcome, got %d replies", got)
	}
}

func TestRouter_LinkMessageGoesToOrchestrator(t *testing.T) {
	transport := &fakeTransport{}
	engine := &fakeCatalog{tracks: playlistTracks(1)}
	r, b := newTestRouter(transport, engine, newFakeUsers())

	runDrained(t, r, b, inbound("https://open.spotify.com/track/id1"))

	if got := transport.count("audio:"); got != 1 {
		t.Fatalf("expected one audio delivery, got %d: %v", got, transport.calls)
	}
}

func TestRouter_ProcessesAllBufferedMessages(t *testing.T) {
	transport := &fakeTransport{}
	engine := &fakeCatalog{tracks: playlistTracks(1)}
	r, b := newTestRouter(transport, engine, newFakeUsers())

	msgs := make([]domain.InboundMessage, 0, 5)
	for i := 0; i < 5; i++ {
		msgs = append(msgs, inbound("https://open.spotify.com/track/id1"))
	}
	runDrained(t, r, b, msgs...)

	if got := transport.count("audio:"); got != 5 {
		t.Fatalf("expected 5 audio deliveries, got %d", got)
	}
}

func TestRouter_StartWithSurroundingWhitespace(t *testing.T) {
	transport := &fakeTransport{}
	users := newFakeUsers()
	r, b := newTestRouter(transport, &fakeCatalog{}, users)

	runDrained(t, r, b, inbound("  /start  "))

	if len(users.inserts) != 1 {
		t.Fatalf("whitespace-padded /start should still register, got %v", users.inserts)
	}
}

func TestRouter_StartWithPayload(t *testing.T) {
	transport := &fakeTransport{}
	users := newFakeUsers()
	r, b := newTestRouter(transport, &fakeCatalog{}, users)

	runDrained(t, r, b, inbound("/start ref123"))

	if len(users.inserts) != 1 {
		t.Fatalf("deep-link /start should still register, got %v", users.inserts)
	}
	if got := transport.count("reply:"); got != 1 {
		t.Fatalf("expected the welcome reply, got %d replies: %v", got, transport.calls)
	}
}

func TestIsStartCommand(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"/start", true},
		{"  /start  ", true},
		{"/start ref123", true},
		{"/started", false},
		{"hello /start", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isStartCommand(tt.text); got != tt.want {
			t.Fatalf("isStartCommand(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
