package message

import (
	"database/sql"
	"strconv"
	"strings"
	"testing"

	"beacon_chat_server/internal/dao/mysql"
	"beacon_chat_server/internal/dao/mysql/repository"
	"beacon_chat_server/internal/dto/request"
	"beacon_chat_server/internal/model"
	"beacon_chat_server/internal/service/membership"
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

type broadcastCall struct {
	chatId  string
	event   string
	payload any
}

type fakeBroadcaster struct {
	calls []broadcastCall
}

func (f *fakeBroadcaster) Broadcast(chatId, event string, payload any) {
	f.calls = append(f.calls, broadcastCall{chatId: chatId, event: event, payload: payload})
}

func (f *fakeBroadcaster) count(event string) int {
	n := 0
	for _, c := range f.calls {
		if c.event == event {
			n++
		}
	}
	return n
}

type dispatchCall struct {
	chatId     string
	senderUuid string
}

type fakeDispatcher struct {
	calls []dispatchCall
}

func (f *fakeDispatcher) Dispatch(chat *model.Chat, _ *model.Message, senderUuid, _ string) {
	f.calls = append(f.calls, dispatchCall{chatId: chat.Uuid, senderUuid: senderUuid})
}

// newTestService seeds a direct chat between U_a and U_b.
func newTestService(t *testing.T) (*Service, *repository.Repositories, *fakeBroadcaster, *fakeDispatcher) {
	t.Helper()
	repos := newTestRepos(t)
	for _, u := range []struct{ uuid, name string }{{"U_a", "Alice"}, {"U_b", "Bob"}} {
		if err := repos.User.Create(&model.UserInfo{
			Uuid: u.uuid, Username: u.name, Password: "x", Nickname: u.name,
		}); err != nil {
			t.Fatalf("create user: %v", err)
		}
	}
	if err := repos.Chat.Create(&model.Chat{
		Uuid: "C1", Kind: model.ChatKindDirect,
		PairKey: sql.NullString{String: "U_a:U_b", Valid: true},
	}); err != nil {
		t.Fatalf("create chat: %v", err)
	}
	for _, u := range []string{"U_a", "U_b"} {
		if err := repos.ChatMember.Create(&model.ChatMember{ChatUuid: "C1", UserUuid: u}); err != nil {
			t.Fatalf("create member: %v", err)
		}
	}

	broadcaster := &fakeBroadcaster{}
	dispatcher := &fakeDispatcher{}
	svc := NewService(repos, membership.NewService(repos), broadcaster, dispatcher, nil)
	return svc, repos, broadcaster, dispatcher
}

func TestSendBroadcastsAndDispatches(t *testing.T) {
	svc, _, broadcaster, dispatcher := newTestService(t)

	rsp, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "hi", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if rsp.Sender.Id != "U_a" || rsp.Content != "hi" {
		t.Fatalf("unexpected respond %+v", rsp)
	}
	if broadcaster.count("new_message") != 1 {
		t.Fatalf("expected one new_message broadcast, got %d", broadcaster.count("new_message"))
	}
	if len(dispatcher.calls) != 1 || dispatcher.calls[0].senderUuid != "U_a" {
		t.Fatalf("expected one dispatch by U_a, got %+v", dispatcher.calls)
	}
}

func TestSendRejectsEmptyAndOversizedText(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	// Tag-only content must be empty after stripping.
	_, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "<script>x=1</script>", Type: "text"})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected invalid param for tag-only content, got %v", err)
	}

	long := make([]rune, 4001)
	for i := range long {
		long[i] = 'a'
	}
	_, err = svc.Send("C1", "U_a", request.SendMessageRequest{Content: string(long), Type: "text"})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected invalid param for oversized content, got %v", err)
	}

	// The ceiling counts UTF-16 code units, so 2000 astral characters
	// fill it exactly and one more ascii byte tips it over.
	astral := strings.Repeat("𝄞", 2000)
	if _, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: astral, Type: "text"}); err != nil {
		t.Fatalf("content at the ceiling must pass, got %v", err)
	}
	_, err = svc.Send("C1", "U_a", request.SendMessageRequest{Content: astral + "a", Type: "text"})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected invalid param one unit over the ceiling, got %v", err)
	}
}

func TestAuthorizationGating(t *testing.T) {
	svc, _, broadcaster, _ := newTestService(t)

	_, err := svc.Send("C1", "U_stranger", request.SendMessageRequest{Content: "hi", Type: "text"})
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for non-member send, got %v", err)
	}
	_, err = svc.List("C1", "U_stranger", 50, 0)
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for non-member list, got %v", err)
	}
	_, err = svc.Send("C_missing", "U_a", request.SendMessageRequest{Content: "hi", Type: "text"})
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("expected not found for missing chat, got %v", err)
	}
	if len(broadcaster.calls) != 0 {
		t.Fatalf("rejected operations must not broadcast, got %+v", broadcaster.calls)
	}
}

func TestEditAuthorAndTerminalDelete(t *testing.T) {
	svc, repos, _, _ := newTestService(t)

	rsp, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "original", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgId := mustParseId(t, rsp.Id)

	if _, err := svc.Edit(msgId, "U_b", "hijack"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for non-author edit, got %v", err)
	}

	if _, err := svc.Edit(msgId, "U_a", "edited"); err != nil {
		t.Fatalf("author edit: %v", err)
	}

	if _, err := svc.Delete(msgId, "U_b"); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("expected forbidden for non-author delete, got %v", err)
	}
	if _, err := svc.Delete(msgId, "U_a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Delete is terminal: edits fail and content stays frozen.
	_, err = svc.Edit(msgId, "U_a", "after delete")
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("expected invalid param for edit-after-delete, got %v", err)
	}
	stored, err := repos.Message.FindByUuid(msgId)
	if err != nil {
		t.Fatalf("find message: %v", err)
	}
	if stored.Content != "edited" {
		t.Fatalf("content mutated after delete: %q", stored.Content)
	}

	// A second delete is a no-op success with the original timestamp.
	first := stored.DeletedTime.Time
	if _, err := svc.Delete(msgId, "U_a"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
	stored, _ = repos.Message.FindByUuid(msgId)
	if !stored.DeletedTime.Time.Equal(first) {
		t.Fatal("repeat delete moved the terminal timestamp")
	}
}

func TestReactionIdempotence(t *testing.T) {
	svc, repos, _, _ := newTestService(t)

	rsp, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "hi", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgId := mustParseId(t, rsp.Id)

	for i := 0; i < 2; i++ {
		update, err := svc.React(msgId, "U_b", "👍")
		if err != nil {
			t.Fatalf("React attempt %d: %v", i+1, err)
		}
		if len(update.Reactions) != 1 || update.Reactions[0].Count != 1 {
			t.Fatalf("expected single reaction after attempt %d, got %+v", i+1, update.Reactions)
		}
	}
	rows, err := repos.Reaction.FindByMessageUuid(msgId)
	if err != nil {
		t.Fatalf("find reactions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one reaction row, got %d", len(rows))
	}

	// A different emoji by the same user is a second reaction.
	update, err := svc.React(msgId, "U_b", "🎉")
	if err != nil {
		t.Fatalf("React: %v", err)
	}
	if len(update.Reactions) != 2 {
		t.Fatalf("expected two groups, got %+v", update.Reactions)
	}

	// Removing a non-existent reaction is a no-op success.
	if _, err := svc.Unreact(msgId, "U_a", "🔥"); err != nil {
		t.Fatalf("Unreact missing: %v", err)
	}
}

func TestReactAfterUnreact(t *testing.T) {
	svc, repos, _, _ := newTestService(t)

	rsp, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "hi", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgId := mustParseId(t, rsp.Id)

	if _, err := svc.React(msgId, "U_b", "👍"); err != nil {
		t.Fatalf("React: %v", err)
	}
	if _, err := svc.Unreact(msgId, "U_b", "👍"); err != nil {
		t.Fatalf("Unreact: %v", err)
	}

	// The removed triple must be creatable again, and actually present.
	update, err := svc.React(msgId, "U_b", "👍")
	if err != nil {
		t.Fatalf("re-React: %v", err)
	}
	if len(update.Reactions) != 1 || update.Reactions[0].Count != 1 {
		t.Fatalf("re-added reaction missing from set: %+v", update.Reactions)
	}
	rows, err := repos.Reaction.FindByMessageUuid(msgId)
	if err != nil {
		t.Fatalf("find reactions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one reaction row after re-add, got %d", len(rows))
	}
}

func TestMarkReadFirstReadWins(t *testing.T) {
	svc, repos, broadcaster, _ := newTestService(t)

	rsp, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "hi", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgId := mustParseId(t, rsp.Id)

	first, err := svc.MarkRead(msgId, "U_b")
	if err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	second, err := svc.MarkRead(msgId, "U_b")
	if err != nil {
		t.Fatalf("repeat MarkRead: %v", err)
	}
	if first.ReadAt != second.ReadAt {
		t.Fatalf("first-read timestamp not preserved: %s vs %s", first.ReadAt, second.ReadAt)
	}
	if broadcaster.count("message_read") != 1 {
		t.Fatalf("expected one message_read broadcast, got %d", broadcaster.count("message_read"))
	}
	receipt, err := repos.ReadReceipt.Find(msgId, "U_b")
	if err != nil || receipt == nil {
		t.Fatalf("receipt missing: %v", err)
	}
}

func TestPinIdempotence(t *testing.T) {
	svc, _, broadcaster, _ := newTestService(t)

	rsp, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "keep", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgId := mustParseId(t, rsp.Id)

	// Any member may pin, not just the author.
	if _, err := svc.Pin(msgId, "U_b"); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	if _, err := svc.Pin(msgId, "U_a"); err != nil {
		t.Fatalf("re-Pin: %v", err)
	}
	if broadcaster.count("message_pinned") != 1 {
		t.Fatalf("re-pin must not rebroadcast, got %d events", broadcaster.count("message_pinned"))
	}

	pins, err := svc.ListPins("C1", "U_a")
	if err != nil {
		t.Fatalf("ListPins: %v", err)
	}
	if len(pins) != 1 || pins[0].PinnedBy != "U_b" {
		t.Fatalf("unexpected pins %+v", pins)
	}

	if _, err := svc.Unpin(msgId, "U_a"); err != nil {
		t.Fatalf("Unpin: %v", err)
	}
	if _, err := svc.Unpin(msgId, "U_a"); err != nil {
		t.Fatalf("repeat Unpin: %v", err)
	}

	// Unpinned messages can be pinned again.
	if _, err := svc.Pin(msgId, "U_a"); err != nil {
		t.Fatalf("pin after unpin: %v", err)
	}
	pins, err = svc.ListPins("C1", "U_a")
	if err != nil {
		t.Fatalf("ListPins after re-pin: %v", err)
	}
	if len(pins) != 1 || pins[0].PinnedBy != "U_a" {
		t.Fatalf("re-pin not visible, got %+v", pins)
	}
}

func TestListPaginationAndReplySnippet(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	first, err := svc.Send("C1", "U_a", request.SendMessageRequest{Content: "first", Type: "text"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	reply, err := svc.Send("C1", "U_b", request.SendMessageRequest{Content: "reply", Type: "text", ReplyTo: first.Id})
	if err != nil {
		t.Fatalf("Send reply: %v", err)
	}
	if reply.ReplyTo == nil || reply.ReplyTo.Content != "first" {
		t.Fatalf("reply snippet missing: %+v", reply.ReplyTo)
	}

	// Deleting the target keeps the snippet content, flagged deleted.
	if _, err := svc.Delete(mustParseId(t, first.Id), "U_a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	page, err := svc.List("C1", "U_a", 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected two messages, got %d", len(page))
	}
	if page[0].Id != first.Id || page[1].Id != reply.Id {
		t.Fatalf("page not oldest-first: %s then %s", page[0].Id, page[1].Id)
	}
	if page[0].DeletedAt == "" || page[0].Content != "" {
		t.Fatalf("deleted message must render without content: %+v", page[0])
	}
	if page[1].ReplyTo == nil || !page[1].ReplyTo.Deleted || page[1].ReplyTo.Content != "first" {
		t.Fatalf("reply snippet must keep original content with deleted flag: %+v", page[1].ReplyTo)
	}

	// Cursor pagination: everything before the reply is just the first.
	older, err := svc.List("C1", "U_a", 50, mustParseId(t, reply.Id))
	if err != nil {
		t.Fatalf("List before cursor: %v", err)
	}
	if len(older) != 1 || older[0].Id != first.Id {
		t.Fatalf("unexpected cursor page %+v", older)
	}
}

func mustParseId(t *testing.T, id string) int64 {
	t.Helper()
	v, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		t.Fatalf("parse message id %q: %v", id, err)
	}
	return v
}
