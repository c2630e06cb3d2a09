package community

import (
	"testing"
	"time"

	"beacon_chat_server/internal/dao/mysql"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/pkg/errorx"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
	svc, repos, _ := newTestServiceDB(t)
	return svc, repos
}

func newTestServiceDB(t *testing.T) (*Service, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := mysql.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.NewRepositories(db)
	return NewService(repos), repos, db
}

func TestCreateCommunityIsAtomicWithDefaultChannel(t *testing.T) {
	svc, repos := newTestService(t)

	rsp, err := svc.CreateCommunity("U_owner", request.CreateCommunityRequest{Name: "beacon"})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	if len(rsp.Channels) != 1 || rsp.Channels[0].Name != "general" {
		t.Fatalf("expected default general channel, got %+v", rsp.Channels)
	}
	if rsp.OwnerId != "U_owner" {
		t.Fatalf("unexpected owner %s", rsp.OwnerId)
	}
	if _, err := repos.CommunityMember.Find(rsp.Uuid, "U_owner"); err != nil {
		t.Fatalf("owner membership missing: %v", err)
	}
}

func TestChannelAdministrationIsOwnerOnly(t *testing.T) {
	svc, repos := newTestService(t)

	rsp, err := svc.CreateCommunity("U_owner", request.CreateCommunityRequest{Name: "beacon"})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	if err := repos.CommunityMember.Create(&model.CommunityMember{CommunityUuid: rsp.Uuid, UserUuid: "U_member"}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if _, err := svc.CreateChannel(rsp.Uuid, "U_member", "random"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for member channel create, got %v", err)
	}
	channel, err := svc.CreateChannel(rsp.Uuid, "U_owner", "random")
	if err != nil {
		t.Fatalf("owner channel create: %v", err)
	}

	if _, err := svc.RenameChannel(channel.Uuid, "U_member", "x"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for member rename, got %v", err)
	}
	if _, err := svc.RenameChannel(channel.Uuid, "U_owner", "offtopic"); err != nil {
		t.Fatalf("owner rename: %v", err)
	}

	if err := svc.DeleteChannel(channel.Uuid, "U_owner"); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	// The default channel is now the last one and must stay.
	if err := svc.DeleteChannel(rsp.Channels[0].Uuid, "U_owner"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected refusal to delete the last channel, got %v", err)
	}
}

func TestOwnerLifecycleGuards(t *testing.T) {
	svc, repos := newTestService(t)

	rsp, err := svc.CreateCommunity("U_owner", request.CreateCommunityRequest{Name: "beacon"})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	if err := repos.CommunityMember.Create(&model.CommunityMember{CommunityUuid: rsp.Uuid, UserUuid: "U_member"}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := svc.Kick(rsp.Uuid, "U_owner", "U_owner"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("owner kick must be refused, got %v", err)
	}
	if err := svc.Leave(rsp.Uuid, "U_owner"); errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("owner leave must be refused before transfer, got %v", err)
	}

	if err := svc.TransferOwnership(rsp.Uuid, "U_owner", "U_member"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := svc.Leave(rsp.Uuid, "U_owner"); err != nil {
		t.Fatalf("former owner leave after transfer: %v", err)
	}
}

func TestInviteExhaustion(t *testing.T) {
	svc, _ := newTestService(t)

	rsp, err := svc.CreateCommunity("U_owner", request.CreateCommunityRequest{Name: "beacon"})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	invite, err := svc.CreateInvite(rsp.Uuid, "U_owner", request.CreateInviteRequest{MaxUses: 1})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	// First redemption takes the only slot.
	joined, err := svc.RedeemInvite(invite.Code, "U_x")
	if err != nil {
		t.Fatalf("first redemption: %v", err)
	}
	if joined.Uuid != rsp.Uuid {
		t.Fatalf("joined wrong community %s", joined.Uuid)
	}

	// Second redemption is gone, and leaves no membership behind.
	_, err = svc.RedeemInvite(invite.Code, "U_y")
	if errorx.GetCode(err) != errorx.CodeGone {
		t.Fatalf("expected gone for exhausted invite, got %v", err)
	}
	if _, err := svc.GetCommunity(rsp.Uuid, "U_y"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("failed redemption must not join, got %v", err)
	}

	// Rejoining with the same exhausted invite still succeeds for an
	// existing member without consuming anything.
	if _, err := svc.RedeemInvite(invite.Code, "U_x"); err != nil {
		t.Fatalf("member re-redeem: %v", err)
	}
}

func TestExpiredInvite(t *testing.T) {
	svc, _, db := newTestServiceDB(t)

	rsp, err := svc.CreateCommunity("U_owner", request.CreateCommunityRequest{Name: "beacon"})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	invite, err := svc.CreateInvite(rsp.Uuid, "U_owner", request.CreateInviteRequest{ExpiresInHours: 1})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	// Force the expiry into the past.
	if err := db.Model(&model.Invite{}).Where("code = ?", invite.Code).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("expire invite: %v", err)
	}

	if _, err := svc.RedeemInvite(invite.Code, "U_late"); errorx.GetCode(err) != errorx.CodeGone {
		t.Fatalf("expected gone for expired invite, got %v", err)
	}
}

func TestRejoinAfterLeaveAndKick(t *testing.T) {
	svc, _ := newTestService(t)

	rsp, err := svc.CreateCommunity("U_owner", request.CreateCommunityRequest{Name: "beacon"})
	if err != nil {
		t.Fatalf("CreateCommunity: %v", err)
	}
	invite, err := svc.CreateInvite(rsp.Uuid, "U_owner", request.CreateInviteRequest{})
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	if _, err := svc.RedeemInvite(invite.Code, "U_x"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := svc.Leave(rsp.Uuid, "U_x"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if _, err := svc.RedeemInvite(invite.Code, "U_x"); err != nil {
		t.Fatalf("rejoin after leave: %v", err)
	}

	if err := svc.Kick(rsp.Uuid, "U_owner", "U_x"); err != nil {
		t.Fatalf("Kick: %v", err)
	}
	if _, err := svc.RedeemInvite(invite.Code, "U_x"); err != nil {
		t.Fatalf("rejoin after kick: %v", err)
	}
	members, err := svc.ListMembers(rsp.Uuid, "U_owner")
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("expected owner and U_x on the roster, got %+v", members)
	}
}
