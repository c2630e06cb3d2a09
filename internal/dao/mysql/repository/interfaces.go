// Package repository defines the data access interfaces and their gorm
// implementations. Services depend on the interfaces only.
package repository

import (
	"time"

	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

// UserRepository accesses accounts.
type UserRepository interface {
	FindByUuid(uuid string) (*model.UserInfo, error)
	FindByUsername(username string) (*model.UserInfo, error)
	FindByUuids(uuids []string) ([]model.UserInfo, error)
	Create(user *model.UserInfo) error
	Update(user *model.UserInfo) error
}

// ChatRepository accesses chat containers of every kind.
type ChatRepository interface {
	FindByUuid(uuid string) (*model.Chat, error)
	FindByUuids(uuids []string) ([]model.Chat, error)
	// FindByPairKey resolves the canonical direct chat for a user pair,
	// nil when none exists yet.
	FindByPairKey(pairKey string) (*model.Chat, error)
	FindByCommunityUuid(communityUuid string) ([]model.Chat, error)
	CountByCommunityUuid(communityUuid string) (int64, error)
	Create(chat *model.Chat) error
	UpdateName(uuid, name string) error
	SoftDeleteByUuid(uuid string) error
}

// CommunityRepository accesses communities.
type CommunityRepository interface {
	FindByUuid(uuid string) (*model.Community, error)
	Create(community *model.Community) error
	UpdateOwner(uuid, ownerId string) error
}

// ChatMemberRepository accesses direct/group chat rosters.
type ChatMemberRepository interface {
	Find(chatUuid, userUuid string) (*model.ChatMember, error)
	FindByChatUuid(chatUuid string) ([]model.ChatMember, error)
	FindChatUuidsByUser(userUuid string) ([]string, error)
	MemberIds(chatUuid string) ([]string, error)
	Create(member *model.ChatMember) error
	UpdateNickname(chatUuid, userUuid, nickname string) error
	Delete(chatUuid, userUuid string) error
}

// CommunityMemberRepository accesses community rosters.
type CommunityMemberRepository interface {
	Find(communityUuid, userUuid string) (*model.CommunityMember, error)
	FindByCommunityUuid(communityUuid string) ([]model.CommunityMember, error)
	MemberIds(communityUuid string) ([]string, error)
	Create(member *model.CommunityMember) error
	Delete(communityUuid, userUuid string) error
}

// MessageRepository accesses messages.
type MessageRepository interface {
	FindByUuid(uuid int64) (*model.Message, error)
	FindByUuids(uuids []int64) ([]model.Message, error)
	// Page returns up to limit messages of a chat older than before
	// (0 means newest), ordered oldest first.
	Page(chatUuid string, before int64, limit int) ([]model.Message, error)
	Create(message *model.Message) error
	UpdateContent(uuid int64, content string, editedAt time.Time) error
	// MarkDeleted sets the terminal delete time when unset. Setting it
	// again is a no-op, matching the idempotent delete contract.
	MarkDeleted(uuid int64, deletedAt time.Time) error
}

// ReactionRepository accesses reactions.
type ReactionRepository interface {
	Find(messageUuid int64, userUuid, emoji string) (*model.Reaction, error)
	FindByMessageUuid(messageUuid int64) ([]model.Reaction, error)
	FindByMessageUuids(messageUuids []int64) ([]model.Reaction, error)
	Create(reaction *model.Reaction) error
	Delete(messageUuid int64, userUuid, emoji string) error
}

// ReadReceiptRepository accesses read receipts.
type ReadReceiptRepository interface {
	Find(messageUuid int64, userUuid string) (*model.ReadReceipt, error)
	Create(receipt *model.ReadReceipt) error
}

// PinRepository accesses pinned messages.
type PinRepository interface {
	FindByMessageUuid(messageUuid int64) (*model.PinnedMessage, error)
	FindByChatUuid(chatUuid string) ([]model.PinnedMessage, error)
	Create(pin *model.PinnedMessage) error
	DeleteByMessageUuid(messageUuid int64) error
}

// InviteRepository accesses community invites.
type InviteRepository interface {
	FindByCode(code string) (*model.Invite, error)
	FindByCommunityUuid(communityUuid string) ([]model.Invite, error)
	Create(invite *model.Invite) error
	// ConsumeUse atomically increments use_count while the limit holds.
	// Returns false when the invite is exhausted.
	ConsumeUse(code string) (bool, error)
}

// ContactRepository accesses friendships.
type ContactRepository interface {
	Find(userId, friendId string) (*model.Contact, error)
	// FindEither returns the row for the pair in either direction.
	FindEither(userId, friendId string) (*model.Contact, error)
	FindAccepted(userId string) ([]model.Contact, error)
	FindPendingFor(userId string) ([]model.Contact, error)
	Create(contact *model.Contact) error
	UpdateStatus(userId, friendId string, status int8) error
	Delete(userId, friendId string) error
}

// DeviceTokenRepository accesses push tokens.
type DeviceTokenRepository interface {
	Upsert(token *model.DeviceToken) error
	FindByUserUuids(userUuids []string) ([]model.DeviceToken, error)
	DeleteByToken(token string) error
}

// Repositories aggregates every repository over one gorm handle.
type Repositories struct {
	db              *gorm.DB
	User            UserRepository
	Chat            ChatRepository
	Community       CommunityRepository
	ChatMember      ChatMemberRepository
	CommunityMember CommunityMemberRepository
	Message         MessageRepository
	Reaction        ReactionRepository
	ReadReceipt     ReadReceiptRepository
	Pin             PinRepository
	Invite          InviteRepository
	Contact         ContactRepository
	DeviceToken     DeviceTokenRepository
}

// NewRepositories builds the aggregate over db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:              db,
		User:            NewUserRepository(db),
		Chat:            NewChatRepository(db),
		Community:       NewCommunityRepository(db),
		ChatMember:      NewChatMemberRepository(db),
		CommunityMember: NewCommunityMemberRepository(db),
		Message:         NewMessageRepository(db),
		Reaction:        NewReactionRepository(db),
		ReadReceipt:     NewReadReceiptRepository(db),
		Pin:             NewPinRepository(db),
		Invite:          NewInviteRepository(db),
		Contact:         NewContactRepository(db),
		DeviceToken:     NewDeviceTokenRepository(db),
	}
}

// Transaction runs fn against a transactional Repositories view.
// Any returned error rolls back every write made inside fn.
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
