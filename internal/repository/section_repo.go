package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"astro-distribusi/backend/internal/model"
)

// SectionScope 分组读取作用域
// RoleKey 为 nil 时仅匹配共用分组（role_key IS NULL）
type SectionScope struct {
	FeatureKey    string
	RoleKey       *string
	Period        *string
	IncludeShared bool // 角色分组之外同时返回共用分组
}

// SectionRepository 表单分组数据访问接口
type SectionRepository interface {
	Create(ctx context.Context, section *model.Section) error
	GetByID(ctx context.Context, id string) (*model.Section, error)
	List(ctx context.Context, scope SectionScope) ([]model.Section, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Section, error)
	MaxIdx(ctx context.Context, scope SectionScope) (int, error)
	Update(ctx context.Context, section *model.Section) error
	Delete(ctx context.Context, id string) error
}

type sectionRepo struct {
	db *gorm.DB
}

// NewSectionRepo 创建 SectionRepository 实例
func NewSectionRepo(db *gorm.DB) SectionRepository {
	return &sectionRepo{db: db}
}

func (r *sectionRepo) scoped(ctx context.Context, scope SectionScope) *gorm.DB {
	db := r.db.WithContext(ctx).Where("feature_key = ?", scope.FeatureKey)

	switch {
	case scope.RoleKey == nil:
		db = db.Where("role_key IS NULL")
	case scope.IncludeShared:
		db = db.Where("(role_key = ? OR role_key IS NULL)", *scope.RoleKey)
	default:
		db = db.Where("role_key = ?", *scope.RoleKey)
	}

	if scope.Period != nil {
		db = db.Where("period = ?", *scope.Period)
	}
	return db
}

func (r *sectionRepo) Create(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *sectionRepo) GetByID(ctx context.Context, id string) (*model.Section, error) {
	var section model.Section
	err := r.db.WithContext(ctx).
		Where("section_id = ?", id).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *sectionRepo) List(ctx context.Context, scope SectionScope) ([]model.Section, error) {
	var sections []model.Section
	err := r.scoped(ctx, scope).
		Order("idx ASC, created_at ASC, section_id ASC").
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Section, error) {
	var sections []model.Section
	if len(ids) == 0 {
		return sections, nil
	}
	err := r.db.WithContext(ctx).
		Where("section_id IN ?", ids).
		Order("idx ASC, created_at ASC, section_id ASC").
		Find(&sections).Error
	return sections, err
}

func (r *sectionRepo) MaxIdx(ctx context.Context, scope SectionScope) (int, error) {
	var maxIdx sql.NullInt64
	err := r.scoped(ctx, scope).
		Model(&model.Section{}).
		Select("MAX(idx)").
		Row().Scan(&maxIdx)
	if err != nil || !maxIdx.Valid {
		return 0, err
	}
	return int(maxIdx.Int64), nil
}

func (r *sectionRepo) Update(ctx context.Context, section *model.Section) error {
	return r.db.WithContext(ctx).Save(section).Error
}

func (r *sectionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("section_id = ?", id).
		Delete(&model.Section{}).Error
}
