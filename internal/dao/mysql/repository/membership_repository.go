package repository

import (
	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

type chatMemberRepository struct {
	db *gorm.DB
}

// NewChatMemberRepository creates the gorm-backed chat roster repository.
func NewChatMemberRepository(db *gorm.DB) ChatMemberRepository {
	return &chatMemberRepository{db: db}
}

func (r *chatMemberRepository) Find(chatUuid, userUuid string) (*model.ChatMember, error) {
	var member model.ChatMember
	if err := r.db.Where("chat_uuid = ? AND user_uuid = ?", chatUuid, userUuid).First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "find chat member chat=%s user=%s", chatUuid, userUuid)
	}
	return &member, nil
}

func (r *chatMemberRepository) FindByChatUuid(chatUuid string) ([]model.ChatMember, error) {
	var members []model.ChatMember
	if err := r.db.Where("chat_uuid = ?", chatUuid).Order("created_at ASC").Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "find chat members chat=%s", chatUuid)
	}
	return members, nil
}

func (r *chatMemberRepository) FindChatUuidsByUser(userUuid string) ([]string, error) {
	var chatUuids []string
	if err := r.db.Model(&model.ChatMember{}).Where("user_uuid = ?", userUuid).
		Pluck("chat_uuid", &chatUuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "find chats of user=%s", userUuid)
	}
	return chatUuids, nil
}

func (r *chatMemberRepository) MemberIds(chatUuid string) ([]string, error) {
	var userUuids []string
	if err := r.db.Model(&model.ChatMember{}).Where("chat_uuid = ?", chatUuid).
		Pluck("user_uuid", &userUuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "find member ids chat=%s", chatUuid)
	}
	return userUuids, nil
}

func (r *chatMemberRepository) Create(member *model.ChatMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBError(err, "create chat member")
	}
	return nil
}

func (r *chatMemberRepository) UpdateNickname(chatUuid, userUuid, nickname string) error {
	if err := r.db.Model(&model.ChatMember{}).
		Where("chat_uuid = ? AND user_uuid = ?", chatUuid, userUuid).
		Update("nickname", nickname).Error; err != nil {
		return wrapDBErrorf(err, "update nickname chat=%s user=%s", chatUuid, userUuid)
	}
	return nil
}

func (r *chatMemberRepository) Delete(chatUuid, userUuid string) error {
	if err := r.db.Where("chat_uuid = ? AND user_uuid = ?", chatUuid, userUuid).
		Delete(&model.ChatMember{}).Error; err != nil {
		return wrapDBErrorf(err, "delete chat member chat=%s user=%s", chatUuid, userUuid)
	}
	return nil
}

type communityMemberRepository struct {
	db *gorm.DB
}

// NewCommunityMemberRepository creates the gorm-backed community roster
// repository.
func NewCommunityMemberRepository(db *gorm.DB) CommunityMemberRepository {
	return &communityMemberRepository{db: db}
}

func (r *communityMemberRepository) Find(communityUuid, userUuid string) (*model.CommunityMember, error) {
	var member model.CommunityMember
	if err := r.db.Where("community_uuid = ? AND user_uuid = ?", communityUuid, userUuid).
		First(&member).Error; err != nil {
		return nil, wrapDBErrorf(err, "find community member community=%s user=%s", communityUuid, userUuid)
	}
	return &member, nil
}

func (r *communityMemberRepository) FindByCommunityUuid(communityUuid string) ([]model.CommunityMember, error) {
	var members []model.CommunityMember
	if err := r.db.Where("community_uuid = ?", communityUuid).Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, wrapDBErrorf(err, "find community members community=%s", communityUuid)
	}
	return members, nil
}

func (r *communityMemberRepository) MemberIds(communityUuid string) ([]string, error) {
	var userUuids []string
	if err := r.db.Model(&model.CommunityMember{}).Where("community_uuid = ?", communityUuid).
		Pluck("user_uuid", &userUuids).Error; err != nil {
		return nil, wrapDBErrorf(err, "find member ids community=%s", communityUuid)
	}
	return userUuids, nil
}

func (r *communityMemberRepository) Create(member *model.CommunityMember) error {
	if err := r.db.Create(member).Error; err != nil {
		return wrapDBError(err, "create community member")
	}
	return nil
}

func (r *communityMemberRepository) Delete(communityUuid, userUuid string) error {
	if err := r.db.Where("community_uuid = ? AND user_uuid = ?", communityUuid, userUuid).
		Delete(&model.CommunityMember{}).Error; err != nil {
		return wrapDBErrorf(err, "delete community member community=%s user=%s", communityUuid, userUuid)
	}
	return nil
}
