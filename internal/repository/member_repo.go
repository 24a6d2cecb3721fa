package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"astro-distribusi/backend/internal/model"
)

// MemberRepository 角色成员数据访问接口
type MemberRepository interface {
	Create(ctx context.Context, member *model.Member) error
	GetByID(ctx context.Context, id string) (*model.Member, error)
	List(ctx context.Context, roleKey string, includeInactive bool) ([]model.Member, error)
	FindActiveByName(ctx context.Context, roleKey, name string) (*model.Member, error)
	MaxIdx(ctx context.Context, roleKey string) (int, error)
	Update(ctx context.Context, member *model.Member) error
	Delete(ctx context.Context, id string) error
}

type memberRepo struct {
	db *gorm.DB
}

// NewMemberRepo 创建 MemberRepository 实例
func NewMemberRepo(db *gorm.DB) MemberRepository {
	return &memberRepo{db: db}
}

func (r *memberRepo) Create(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *memberRepo) GetByID(ctx context.Context, id string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("member_id = ?", id).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) List(ctx context.Context, roleKey string, includeInactive bool) ([]model.Member, error) {
	var members []model.Member
	db := r.db.WithContext(ctx).Where("role_key = ?", roleKey)

	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}

	err := db.Order("idx ASC, created_at ASC, member_id ASC").Find(&members).Error
	return members, err
}

func (r *memberRepo) FindActiveByName(ctx context.Context, roleKey, name string) (*model.Member, error) {
	var member model.Member
	err := r.db.WithContext(ctx).
		Where("role_key = ? AND name = ? AND is_active = ?", roleKey, name, true).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepo) MaxIdx(ctx context.Context, roleKey string) (int, error) {
	var maxIdx sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&model.Member{}).
		Where("role_key = ?", roleKey).
		Select("MAX(idx)").
		Row().Scan(&maxIdx)
	if err != nil || !maxIdx.Valid {
		return 0, err
	}
	return int(maxIdx.Int64), nil
}

func (r *memberRepo) Update(ctx context.Context, member *model.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("member_id = ?", id).
		Delete(&model.Member{}).Error
}
