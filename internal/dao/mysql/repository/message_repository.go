package repository

import (
	"sort"
	"time"

	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates the gorm-backed message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "find message uuid=%d", uuid)
	}
	return &message, nil
}

func (r *messageRepository) FindByUuids(uuids []int64) ([]model.Message, error) {
	if len(uuids) == 0 {
		return nil, nil
	}
	var messages []model.Message
	if err := r.db.Where("uuid IN ?", uuids).Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "find messages by uuids")
	}
	return messages, nil
}

// Page fetches newest-first below the cursor, then reverses so callers
// always receive oldest-first pages.
func (r *messageRepository) Page(chatUuid string, before int64, limit int) ([]model.Message, error) {
	q := r.db.Where("chat_uuid = ?", chatUuid)
	if before > 0 {
		q = q.Where("uuid < ?", before)
	}
	var messages []model.Message
	if err := q.Order("uuid DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "page messages chat=%s", chatUuid)
	}
	sort.Slice(messages, func(i, j int) bool { return messages[i].Uuid < messages[j].Uuid })
	return messages, nil
}

func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return wrapDBError(err, "create message")
	}
	return nil
}

func (r *messageRepository) UpdateContent(uuid int64, content string, editedAt time.Time) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Updates(map[string]interface{}{"content": content, "edited_at": editedAt}).Error; err != nil {
		return wrapDBErrorf(err, "edit message uuid=%d", uuid)
	}
	return nil
}

// MarkDeleted only writes when deleted_time is still null, keeping the
// first delete timestamp as the terminal one.
func (r *messageRepository) MarkDeleted(uuid int64, deletedAt time.Time) error {
	if err := r.db.Model(&model.Message{}).
		Where("uuid = ? AND deleted_time IS NULL", uuid).
		Update("deleted_time", deletedAt).Error; err != nil {
		return wrapDBErrorf(err, "delete message uuid=%d", uuid)
	}
	return nil
}
