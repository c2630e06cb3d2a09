package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"beacon_chat_server/internal/dao/mysql"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/internal/service/membership"
	"beacon_chat_server/pkg/constants"
	"beacon_chat_server/pkg/errorx"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestRepos(t *testing.T) *repository.Repositories {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repository.NewRepositories(db)
}

func newTestClient(g *Gateway, userUuid string) *Client {
	return &Client{
		gateway:  g,
		UserUuid: userUuid,
		send:     make(chan []byte, constants.CHANNEL_SIZE),
		rooms:    make(map[string]struct{}),
	}
}

// drainEvents empties the client's send buffer into parsed envelopes.
func drainEvents(c *Client) []Envelope {
	var events []Envelope
	for {
		select {
		case frame := <-c.send:
			var env Envelope
			if err := json.Unmarshal(frame, &env); err == nil {
				events = append(events, env)
			}
		default:
			return events
		}
	}
}

func countPresence(events []Envelope, userUuid, status string) int {
	n := 0
	for _, env := range events {
		if env.Event != EventPresenceUpdate {
			continue
		}
		var p presencePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			continue
		}
		if p.UserId == userUuid && p.Status == status {
			n++
		}
	}
	return n
}

func TestPresenceTransitionsOnceAcrossDevices(t *testing.T) {
	verifier := NewCachedVerifier(membership.NewService(newTestRepos(t)), time.Second)
	g := NewGateway(verifier)

	observer := newTestClient(g, "U_observer")
	g.register(observer)
	drainEvents(observer)

	// Two connections for the same user: one online event total.
	dev1 := newTestClient(g, "U_multi")
	dev2 := newTestClient(g, "U_multi")
	g.register(dev1)
	g.register(dev2)
	if got := countPresence(drainEvents(observer), "U_multi", "online"); got != 1 {
		t.Fatalf("expected exactly 1 online event, got %d", got)
	}

	// Closing the first device is not a presence transition.
	g.unregister(dev1)
	if got := countPresence(drainEvents(observer), "U_multi", "offline"); got != 0 {
		t.Fatalf("offline fired while a connection remained, got %d events", got)
	}

	// Closing the last one is.
	g.unregister(dev2)
	if got := countPresence(drainEvents(observer), "U_multi", "offline"); got != 1 {
		t.Fatalf("expected exactly 1 offline event, got %d", got)
	}
}

func TestRegisterSendsPresenceSnapshot(t *testing.T) {
	verifier := NewCachedVerifier(membership.NewService(newTestRepos(t)), time.Second)
	g := NewGateway(verifier)

	first := newTestClient(g, "U_first")
	g.register(first)

	joiner := newTestClient(g, "U_joiner")
	g.register(joiner)

	events := drainEvents(joiner)
	if len(events) == 0 || events[0].Event != EventPresenceSnapshot {
		t.Fatalf("expected initial_state as first event, got %+v", events)
	}
	var online []string
	if err := json.Unmarshal(events[0].Data, &online); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	found := map[string]bool{}
	for _, id := range online {
		found[id] = true
	}
	if !found["U_first"] || !found["U_joiner"] {
		t.Fatalf("snapshot missing online users: %v", online)
	}
}

func TestJoinRoomAuthorization(t *testing.T) {
	repos := newTestRepos(t)
	if err := repos.Chat.Create(&model.Chat{Uuid: "C1", Kind: model.ChatKindGroup, Name: "g"}); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if err := repos.ChatMember.Create(&model.ChatMember{ChatUuid: "C1", UserUuid: "U_in"}); err != nil {
		t.Fatalf("create member: %v", err)
	}
	verifier := NewCachedVerifier(membership.NewService(repos), time.Second)
	g := NewGateway(verifier)

	member := newTestClient(g, "U_in")
	g.register(member)
	if err := g.joinRoom(member, "C1"); err != nil {
		t.Fatalf("member join failed: %v", err)
	}
	if !g.inRoom(member, "C1") {
		t.Fatal("member not subscribed after join")
	}

	outsider := newTestClient(g, "U_out")
	g.register(outsider)
	err := g.joinRoom(outsider, "C1")
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for non-member, got %v", err)
	}
	if g.inRoom(outsider, "C1") {
		t.Fatal("forbidden join must never subscribe")
	}

	err = g.joinRoom(member, "C_missing")
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected not found for unknown chat, got %v", err)
	}
}

func TestCachedVerifierStalenessWindow(t *testing.T) {
	repos := newTestRepos(t)
	if err := repos.Chat.Create(&model.Chat{Uuid: "C1", Kind: model.ChatKindGroup, Name: "g"}); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	if err := repos.ChatMember.Create(&model.ChatMember{ChatUuid: "C1", UserUuid: "U1"}); err != nil {
		t.Fatalf("create member: %v", err)
	}
	verifier := NewCachedVerifier(membership.NewService(repos), 50*time.Millisecond)

	isMember, _, err := verifier.VerifyMembership("C1", "U1")
	if err != nil || !isMember {
		t.Fatalf("initial check: isMember=%v err=%v", isMember, err)
	}

	// Membership change is invisible while the verdict is cached.
	if err := repos.ChatMember.Delete("C1", "U1"); err != nil {
		t.Fatalf("delete member: %v", err)
	}
	isMember, _, err = verifier.VerifyMembership("C1", "U1")
	if err != nil || !isMember {
		t.Fatalf("cached check: isMember=%v err=%v", isMember, err)
	}

	// After the TTL the durable roster wins.
	time.Sleep(60 * time.Millisecond)
	isMember, _, err = verifier.VerifyMembership("C1", "U1")
	if err != nil {
		t.Fatalf("expired check: %v", err)
	}
	if isMember {
		t.Fatal("expired entry must fall through to the durable roster")
	}
}
