package contact

import (
	"testing"

	"beacon_chat_server/internal/dao/mysql"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.NewRepositories(db)
	for _, u := range []model.UserInfo{
		{Uuid: "U_a", Username: "alice", Nickname: "Alice"},
		{Uuid: "U_b", Username: "bob", Nickname: "Bob"},
		{Uuid: "U_c", Username: "carol", Nickname: "Carol"},
	} {
		user := u
		if err := repos.User.Create(&user); err != nil {
			t.Fatalf("seed user %s: %v", u.Uuid, err)
		}
	}
	return NewService(repos)
}

func TestRequestAcceptFlow(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Request("U_a", "U_a"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("self request must be rejected, got %v", err)
	}
	if err := svc.Request("U_a", "U_ghost"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("unknown target must be not found, got %v", err)
	}

	if err := svc.Request("U_a", "U_b"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if err := svc.Request("U_a", "U_b"); errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("duplicate request must conflict, got %v", err)
	}

	// The pending request shows up on Bob's side only.
	bob, err := svc.List("U_b")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(bob.Pending) != 1 || bob.Pending[0].UserId != "U_a" || !bob.Pending[0].Incoming {
		t.Fatalf("expected one incoming request from U_a, got %+v", bob.Pending)
	}
	alice, err := svc.List("U_a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(alice.Pending) != 0 || len(alice.Friends) != 0 {
		t.Fatalf("requester must not see the pending entry, got %+v", alice)
	}

	if err := svc.Accept("U_b", "U_c"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("accept without request must be not found, got %v", err)
	}
	if err := svc.Accept("U_b", "U_a"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	for _, caller := range []string{"U_a", "U_b"} {
		got, err := svc.List(caller)
		if err != nil {
			t.Fatalf("List %s: %v", caller, err)
		}
		if len(got.Friends) != 1 || got.Friends[0].Status != "accepted" {
			t.Fatalf("%s expected one accepted friend, got %+v", caller, got)
		}
	}
}

func TestCrossingRequestsAutoAccept(t *testing.T) {
	svc := newTestService(t)

	if err := svc.Request("U_a", "U_b"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	// Bob requesting back confirms the pair instead of creating a
	// second crossing row.
	if err := svc.Request("U_b", "U_a"); err != nil {
		t.Fatalf("crossing Request: %v", err)
	}

	got, err := svc.List("U_a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got.Friends) != 1 || got.Friends[0].UserId != "U_b" {
		t.Fatalf("expected accepted pair, got %+v", got)
	}
	if err := svc.Request("U_b", "U_a"); errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("request to an accepted pair must conflict, got %v", err)
	}
}

func TestRemoveCoversRejectAndUnfriend(t *testing.T) {
	svc := newTestService(t)

	// Reject: the target removes the pending row.
	if err := svc.Request("U_a", "U_b"); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if err := svc.Remove("U_b", "U_a"); err != nil {
		t.Fatalf("Remove pending: %v", err)
	}
	got, err := svc.List("U_b")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got.Pending) != 0 {
		t.Fatalf("rejected request must be gone, got %+v", got.Pending)
	}
	// A fresh request is possible after rejection.
	if err := svc.Request("U_a", "U_b"); err != nil {
		t.Fatalf("re-Request: %v", err)
	}
	if err := svc.Accept("U_b", "U_a"); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	// Unfriend from either side.
	if err := svc.Remove("U_a", "U_b"); err != nil {
		t.Fatalf("Remove accepted: %v", err)
	}
	got, err = svc.List("U_a")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got.Friends) != 0 {
		t.Fatalf("unfriended pair must be gone, got %+v", got.Friends)
	}
	// Removing a pair with no row stays quiet.
	if err := svc.Remove("U_a", "U_c"); err != nil {
		t.Fatalf("Remove missing: %v", err)
	}
}
