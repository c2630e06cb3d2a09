package chats

import (
	"testing"

	"beacon_chat_server/internal/dao/mysql"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
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
	return NewService(repos), repos
}

func TestCreateDirectIsIdempotentPerPair(t *testing.T) {
	svc, _ := newTestService(t)

	first, err := svc.CreateDirect("U_a", "U_b")
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	if first.Kind != "direct" {
		t.Fatalf("expected direct kind, got %q", first.Kind)
	}

	// Same pair from the other side resolves to the same chat.
	second, err := svc.CreateDirect("U_b", "U_a")
	if err != nil {
		t.Fatalf("CreateDirect reversed: %v", err)
	}
	if second.Uuid != first.Uuid {
		t.Fatalf("pair must own one chat, got %s and %s", first.Uuid, second.Uuid)
	}

	if _, err := svc.CreateDirect("U_a", "U_a"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("self chat must be rejected, got %v", err)
	}
	if _, err := svc.CreateDirect("U_a", "U_missing"); errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("unknown peer must be not found, got %v", err)
	}
}

func TestCreateGroupValidatesRoster(t *testing.T) {
	svc, repos := newTestService(t)

	rsp, err := svc.CreateGroup("U_a", request.CreateGroupChatRequest{
		Name: "trip", MemberIds: []string{"U_b", "U_a"},
	})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	ids, err := repos.ChatMember.MemberIds(rsp.Uuid)
	if err != nil {
		t.Fatalf("MemberIds: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("caller listed twice must still yield 2 members, got %v", ids)
	}

	_, err = svc.CreateGroup("U_a", request.CreateGroupChatRequest{
		Name: "bad", MemberIds: []string{"U_b", "U_ghost"},
	})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("unknown member id must be rejected, got %v", err)
	}
}

func TestAddMemberAndLeaveAreGroupOnly(t *testing.T) {
	svc, _ := newTestService(t)

	direct, err := svc.CreateDirect("U_a", "U_b")
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	if err := svc.AddMember(direct.Uuid, "U_a", "U_c"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("adding to a direct chat must be rejected, got %v", err)
	}
	if err := svc.Leave(direct.Uuid, "U_a"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("leaving a direct chat must be rejected, got %v", err)
	}

	group, err := svc.CreateGroup("U_a", request.CreateGroupChatRequest{Name: "team"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := svc.AddMember(group.Uuid, "U_c", "U_b"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("non-member must not add, got %v", err)
	}
	if err := svc.AddMember(group.Uuid, "U_a", "U_b"); err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	// Re-adding is a no-op success.
	if err := svc.AddMember(group.Uuid, "U_a", "U_b"); err != nil {
		t.Fatalf("AddMember repeat: %v", err)
	}

	if err := svc.Leave(group.Uuid, "U_b"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	members, err := svc.ListMembers(group.Uuid, "U_a")
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 1 || members[0].UserId != "U_a" {
		t.Fatalf("expected only U_a after leave, got %+v", members)
	}

	// A user who left can be added back.
	if err := svc.AddMember(group.Uuid, "U_a", "U_b"); err != nil {
		t.Fatalf("re-add after leave: %v", err)
	}
	members, err = svc.ListMembers(group.Uuid, "U_a")
	if err != nil {
		t.Fatalf("ListMembers after re-add: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected U_a and U_b after re-add, got %+v", members)
	}
}

func TestListMembersResolvesNicknameOverride(t *testing.T) {
	svc, _ := newTestService(t)

	group, err := svc.CreateGroup("U_a", request.CreateGroupChatRequest{
		Name: "team", MemberIds: []string{"U_b"},
	})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := svc.SetNickname(group.Uuid, "U_b", "Bobby"); err != nil {
		t.Fatalf("SetNickname: %v", err)
	}

	members, err := svc.ListMembers(group.Uuid, "U_a")
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	byUser := make(map[string]string, len(members))
	for _, m := range members {
		byUser[m.UserId] = m.Nickname
	}
	if byUser["U_b"] != "Bobby" {
		t.Fatalf("override must win, got %q", byUser["U_b"])
	}
	if byUser["U_a"] != "Alice" {
		t.Fatalf("profile nickname must be the fallback, got %q", byUser["U_a"])
	}

	if _, err := svc.ListMembers(group.Uuid, "U_c"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("non-member must not list roster, got %v", err)
	}
}

func TestListMineCoversDirectAndGroup(t *testing.T) {
	svc, _ := newTestService(t)

	direct, err := svc.CreateDirect("U_a", "U_b")
	if err != nil {
		t.Fatalf("CreateDirect: %v", err)
	}
	group, err := svc.CreateGroup("U_a", request.CreateGroupChatRequest{Name: "team"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	mine, err := svc.ListMine("U_a")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	seen := make(map[string]bool, len(mine))
	for _, c := range mine {
		seen[c.Uuid] = true
	}
	if !seen[direct.Uuid] || !seen[group.Uuid] {
		t.Fatalf("expected both chats, got %+v", mine)
	}

	other, err := svc.ListMine("U_c")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("U_c has no chats, got %+v", other)
	}
}
