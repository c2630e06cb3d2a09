package repository

import (
	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates the gorm-backed push token repository.
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{db: db}
}

// Upsert re-homes a token to its latest owner: the same device token
// reappearing under another account moves, never duplicates.
func (r *deviceTokenRepository) Upsert(token *model.DeviceToken) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_uuid", "platform", "updated_at"}),
	}).Create(token).Error; err != nil {
		return wrapDBError(err, "upsert device token")
	}
	return nil
}

func (r *deviceTokenRepository) FindByUserUuids(userUuids []string) ([]model.DeviceToken, error) {
	if len(userUuids) == 0 {
		return nil, nil
	}
	var tokens []model.DeviceToken
	if err := r.db.Where("user_uuid IN ?", userUuids).Find(&tokens).Error; err != nil {
		return nil, wrapDBError(err, "find device tokens")
	}
	return tokens, nil
}

func (r *deviceTokenRepository) DeleteByToken(token string) error {
	if err := r.db.Where("token = ?", token).Delete(&model.DeviceToken{}).Error; err != nil {
		return wrapDBError(err, "delete device token")
	}
	return nil
}
