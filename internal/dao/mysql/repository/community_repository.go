package repository

import (
	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates the gorm-backed community repository.
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) FindByUuid(uuid string) (*model.Community, error) {
	var community model.Community
	if err := r.db.Where("uuid = ?", uuid).First(&community).Error; err != nil {
		return nil, wrapDBErrorf(err, "find community uuid=%s", uuid)
	}
	return &community, nil
}

func (r *communityRepository) Create(community *model.Community) error {
	if err := r.db.Create(community).Error; err != nil {
		return wrapDBError(err, "create community")
	}
	return nil
}

func (r *communityRepository) UpdateOwner(uuid, ownerId string) error {
	if err := r.db.Model(&model.Community{}).Where("uuid = ?", uuid).Update("owner_id", ownerId).Error; err != nil {
		return wrapDBErrorf(err, "transfer community uuid=%s", uuid)
	}
	return nil
}
