package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"astro-distribusi/backend/internal/model"
)

// FieldRepository 表单字段数据访问接口
type FieldRepository interface {
	Create(ctx context.Context, field *model.Field) error
	GetByID(ctx context.Context, id string) (*model.Field, error)
	ListBySections(ctx context.Context, sectionIDs []string) ([]model.Field, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Field, error)
	MaxIdx(ctx context.Context, sectionID string) (int, error)
	Update(ctx context.Context, field *model.Field) error
	Delete(ctx context.Context, id string) error
	DeleteBySection(ctx context.Context, sectionID string) error
}

type fieldRepo struct {
	db *gorm.DB
}

// NewFieldRepo 创建 FieldRepository 实例
func NewFieldRepo(db *gorm.DB) FieldRepository {
	return &fieldRepo{db: db}
}

func (r *fieldRepo) Create(ctx context.Context, field *model.Field) error {
	return r.db.WithContext(ctx).Create(field).Error
}

func (r *fieldRepo) GetByID(ctx context.Context, id string) (*model.Field, error) {
	var field model.Field
	err := r.db.WithContext(ctx).
		Where("field_id = ?", id).
		First(&field).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

func (r *fieldRepo) ListBySections(ctx context.Context, sectionIDs []string) ([]model.Field, error) {
	var fields []model.Field
	if len(sectionIDs) == 0 {
		return fields, nil
	}
	// 未分组字段排在前面，同组字段连续输出
	err := r.db.WithContext(ctx).
		Where("section_id IN ?", sectionIDs).
		Order("group_key ASC NULLS FIRST, group_order ASC NULLS FIRST, idx ASC, created_at ASC, field_id ASC").
		Find(&fields).Error
	return fields, err
}

func (r *fieldRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Field, error) {
	var fields []model.Field
	if len(ids) == 0 {
		return fields, nil
	}
	err := r.db.WithContext(ctx).
		Where("field_id IN ?", ids).
		Find(&fields).Error
	return fields, err
}

func (r *fieldRepo) MaxIdx(ctx context.Context, sectionID string) (int, error) {
	var maxIdx sql.NullInt64
	err := r.db.WithContext(ctx).
		Model(&model.Field{}).
		Where("section_id = ?", sectionID).
		Select("MAX(idx)").
		Row().Scan(&maxIdx)
	if err != nil || !maxIdx.Valid {
		return 0, err
	}
	return int(maxIdx.Int64), nil
}

func (r *fieldRepo) Update(ctx context.Context, field *model.Field) error {
	return r.db.WithContext(ctx).Save(field).Error
}

func (r *fieldRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("field_id = ?", id).
		Delete(&model.Field{}).Error
}

func (r *fieldRepo) DeleteBySection(ctx context.Context, sectionID string) error {
	return r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Delete(&model.Field{}).Error
}
