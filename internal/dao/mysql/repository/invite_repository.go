package repository

import (
	"time"

	"beacon_chat_server/internal/model"

	"gorm.io/gorm"
)

type inviteRepository struct {
	db *gorm.DB
}

// NewInviteRepository creates the gorm-backed invite repository.
func NewInviteRepository(db *gorm.DB) InviteRepository {
	return &inviteRepository{db: db}
}

func (r *inviteRepository) FindByCode(code string) (*model.Invite, error) {
	var invite model.Invite
	if err := r.db.Where("code = ?", code).First(&invite).Error; err != nil {
		return nil, wrapDBErrorf(err, "find invite code=%s", code)
	}
	return &invite, nil
}

func (r *inviteRepository) FindByCommunityUuid(communityUuid string) ([]model.Invite, error) {
	var invites []model.Invite
	if err := r.db.Where("community_uuid = ?", communityUuid).Order("created_at DESC").
		Find(&invites).Error; err != nil {
		return nil, wrapDBErrorf(err, "find invites community=%s", communityUuid)
	}
	return invites, nil
}

func (r *inviteRepository) Create(invite *model.Invite) error {
	if err := r.db.Create(invite).Error; err != nil {
		return wrapDBError(err, "create invite")
	}
	return nil
}

// ConsumeUse is a guarded increment: the WHERE clause re-checks the
// limit inside the same statement, so two racing redemptions of the
// last slot cannot both pass. Run it inside the redemption transaction.
func (r *inviteRepository) ConsumeUse(code string) (bool, error) {
	res := r.db.Model(&model.Invite{}).
		Where("code = ? AND (max_uses = 0 OR use_count < max_uses)", code).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Update("use_count", gorm.Expr("use_count + 1"))
	if res.Error != nil {
		return false, wrapDBErrorf(res.Error, "consume invite code=%s", code)
	}
	return res.RowsAffected == 1, nil
}
