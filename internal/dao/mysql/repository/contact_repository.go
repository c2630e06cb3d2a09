package repository

import (
	"errors"

	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates the gorm-backed friendship repository.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Find(userId, friendId string) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.Where("user_id = ? AND friend_id = ?", userId, friendId).
		First(&contact).Error; err != nil {
		return nil, wrapDBErrorf(err, "find contact user=%s friend=%s", userId, friendId)
	}
	return &contact, nil
}

func (r *contactRepository) FindEither(userId, friendId string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userId, friendId, friendId, userId).First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDBErrorf(err, "find contact pair user=%s friend=%s", userId, friendId)
	}
	return &contact, nil
}

func (r *contactRepository) FindAccepted(userId string) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := r.db.Where("(user_id = ? OR friend_id = ?) AND status = ?",
		userId, userId, model.ContactStatusAccepted).Find(&contacts).Error; err != nil {
		return nil, wrapDBErrorf(err, "find friends user=%s", userId)
	}
	return contacts, nil
}

func (r *contactRepository) FindPendingFor(userId string) ([]model.Contact, error) {
	var contacts []model.Contact
	if err := r.db.Where("friend_id = ? AND status = ?",
		userId, model.ContactStatusPending).Find(&contacts).Error; err != nil {
		return nil, wrapDBErrorf(err, "find pending requests user=%s", userId)
	}
	return contacts, nil
}

func (r *contactRepository) Create(contact *model.Contact) error {
	if err := r.db.Create(contact).Error; err != nil {
		return wrapDBError(err, "create contact")
	}
	return nil
}

func (r *contactRepository) UpdateStatus(userId, friendId string, status int8) error {
	if err := r.db.Model(&model.Contact{}).
		Where("user_id = ? AND friend_id = ?", userId, friendId).
		Update("status", status).Error; err != nil {
		return wrapDBErrorf(err, "update contact user=%s friend=%s", userId, friendId)
	}
	return nil
}

func (r *contactRepository) Delete(userId, friendId string) error {
	if err := r.db.Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)",
		userId, friendId, friendId, userId).Delete(&model.Contact{}).Error; err != nil {
		return wrapDBErrorf(err, "delete contact user=%s friend=%s", userId, friendId)
	}
	return nil
}
