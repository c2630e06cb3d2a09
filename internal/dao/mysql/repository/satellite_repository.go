package repository

import (
	"errors"

	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

// Reactions, read receipts and pins share the pattern of small
// satellite tables keyed by message snowflake.

type reactionRepository struct {
	db *gorm.DB
}

// NewReactionRepository creates the gorm-backed reaction repository.
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db}
}

func (r *reactionRepository) Find(messageUuid int64, userUuid, emoji string) (*model.Reaction, error) {
	var reaction model.Reaction
	if err := r.db.Where("message_uuid = ? AND user_uuid = ? AND emoji = ?",
		messageUuid, userUuid, emoji).First(&reaction).Error; err != nil {
		return nil, wrapDBErrorf(err, "find reaction message=%d", messageUuid)
	}
	return &reaction, nil
}

func (r *reactionRepository) FindByMessageUuid(messageUuid int64) ([]model.Reaction, error) {
	var reactions []model.Reaction
	if err := r.db.Where("message_uuid = ?", messageUuid).Order("created_at ASC").
		Find(&reactions).Error; err != nil {
		return nil, wrapDBErrorf(err, "find reactions message=%d", messageUuid)
	}
	return reactions, nil
}

func (r *reactionRepository) FindByMessageUuids(messageUuids []int64) ([]model.Reaction, error) {
	if len(messageUuids) == 0 {
		return nil, nil
	}
	var reactions []model.Reaction
	if err := r.db.Where("message_uuid IN ?", messageUuids).Order("created_at ASC").
		Find(&reactions).Error; err != nil {
		return nil, wrapDBError(err, "find reactions by messages")
	}
	return reactions, nil
}

func (r *reactionRepository) Create(reaction *model.Reaction) error {
	if err := r.db.Create(reaction).Error; err != nil {
		return wrapDBError(err, "create reaction")
	}
	return nil
}

func (r *reactionRepository) Delete(messageUuid int64, userUuid, emoji string) error {
	if err := r.db.Where("message_uuid = ? AND user_uuid = ? AND emoji = ?",
		messageUuid, userUuid, emoji).Delete(&model.Reaction{}).Error; err != nil {
		return wrapDBErrorf(err, "delete reaction message=%d", messageUuid)
	}
	return nil
}

type readReceiptRepository struct {
	db *gorm.DB
}

// NewReadReceiptRepository creates the gorm-backed receipt repository.
func NewReadReceiptRepository(db *gorm.DB) ReadReceiptRepository {
	return &readReceiptRepository{db: db}
}

func (r *readReceiptRepository) Find(messageUuid int64, userUuid string) (*model.ReadReceipt, error) {
	var receipt model.ReadReceipt
	if err := r.db.Where("message_uuid = ? AND user_uuid = ?", messageUuid, userUuid).
		First(&receipt).Error; err != nil {
		return nil, wrapDBErrorf(err, "find receipt message=%d user=%s", messageUuid, userUuid)
	}
	return &receipt, nil
}

func (r *readReceiptRepository) Create(receipt *model.ReadReceipt) error {
	if err := r.db.Create(receipt).Error; err != nil {
		return wrapDBError(err, "create receipt")
	}
	return nil
}

type pinRepository struct {
	db *gorm.DB
}

// NewPinRepository creates the gorm-backed pin repository.
func NewPinRepository(db *gorm.DB) PinRepository {
	return &pinRepository{db: db}
}

func (r *pinRepository) FindByMessageUuid(messageUuid int64) (*model.PinnedMessage, error) {
	var pin model.PinnedMessage
	err := r.db.Where("message_uuid = ?", messageUuid).First(&pin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "find pin message=%d", messageUuid)
	}
	return &pin, nil
}

func (r *pinRepository) FindByChatUuid(chatUuid string) ([]model.PinnedMessage, error) {
	var pins []model.PinnedMessage
	if err := r.db.Where("chat_uuid = ?", chatUuid).Order("created_at DESC").
		Find(&pins).Error; err != nil {
		return nil, wrapDBErrorf(err, "find pins chat=%s", chatUuid)
	}
	return pins, nil
}

func (r *pinRepository) Create(pin *model.PinnedMessage) error {
	if err := r.db.Create(pin).Error; err != nil {
		return wrapDBError(err, "create pin")
	}
	return nil
}

func (r *pinRepository) DeleteByMessageUuid(messageUuid int64) error {
	if err := r.db.Where("message_uuid = ?", messageUuid).
		Delete(&model.PinnedMessage{}).Error; err != nil {
		return wrapDBErrorf(err, "delete pin message=%d", messageUuid)
	}
	return nil
}
