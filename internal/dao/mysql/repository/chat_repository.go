package repository

import (
	"errors"

	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates the gorm-backed chat repository.
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) FindByUuid(uuid string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("uuid = ?", uuid).First(&chat).Error; err != nil {
		return nil, wrapDBErrorf(err, "find chat uuid=%s", uuid)
	}
	return &chat, nil
}

func (r *chatRepository) FindByUuids(uuids []string) ([]model.Chat, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var chats []model.Chat
	if err := r.db.Where("uuid IN ?", uuids).Find(&chats).Error; err != nil {
		return nil, wrapDBError(err, "find chats by uuids")
	}
	return chats, nil
}

func (r *chatRepository) FindByPairKey(pairKey string) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.Where("pair_key = ?", pairKey).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "find chat pair=%s", pairKey)
	}
	return &chat, nil
}

func (r *chatRepository) FindByCommunityUuid(communityUuid string) ([]model.Chat, error) {
	var chats []model.Chat
	if err := r.db.Where("community_id = ?", communityUuid).Order("created_at ASC").Find(&chats).Error; err != nil {
		return nil, wrapDBErrorf(err, "find channels community=%s", communityUuid)
	}
	return chats, nil
}

func (r *chatRepository) CountByCommunityUuid(communityUuid string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Chat{}).Where("community_id = ?", communityUuid).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "count channels community=%s", communityUuid)
	}
	return count, nil
}

func (r *chatRepository) Create(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return wrapDBError(err, "create chat")
	}
	return nil
}

func (r *chatRepository) UpdateName(uuid, name string) error {
	if err := r.db.Model(&model.Chat{}).Where("uuid = ?", uuid).Update("name", name).Error; err != nil {
		return wrapDBErrorf(err, "rename chat uuid=%s", uuid)
	}
	return nil
}

func (r *chatRepository) SoftDeleteByUuid(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Chat{}).Error; err != nil {
		return wrapDBErrorf(err, "delete chat uuid=%s", uuid)
	}
	return nil
}
