package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"astro-distribusi/backend/internal/model"
)

// SubjectKey 表单实例的自然键
type SubjectKey struct {
	FeatureKey string
	RoleKey    string
	FormDate   time.Time // 仅日历日期有意义
	Depo       string
}

// DateString 以 YYYY-MM-DD 表示日期，避免时区换算造成的日期偏移
func (k SubjectKey) DateString() string {
	return k.FormDate.Format("2006-01-02")
}

// FormRepository 表单实例与采集值数据访问接口
type FormRepository interface {
	Get(ctx context.Context, key SubjectKey) (*model.FormInstance, error)
	Ensure(ctx context.Context, key SubjectKey, createdBy string) (*model.FormInstance, error)
	UpsertValues(ctx context.Context, records []model.ValueRecord) error
	ListValues(ctx context.Context, formID string) ([]model.ValueRecord, error)
}

type formRepo struct {
	db *gorm.DB
}

// NewFormRepo 创建 FormRepository 实例
func NewFormRepo(db *gorm.DB) FormRepository {
	return &formRepo{db: db}
}

func (r *formRepo) Get(ctx context.Context, key SubjectKey) (*model.FormInstance, error) {
	var form model.FormInstance
	err := r.db.WithContext(ctx).
		Where("feature_key = ? AND role_key = ? AND form_date = ? AND depo = ?",
			key.FeatureKey, key.RoleKey, key.DateString(), key.Depo).
		First(&form).Error
	if err != nil {
		return nil, err
	}
	return &form, nil
}

// Ensure 依赖唯一约束完成 "不存在则插入，否则读取"，并发首次提交不会产生重复实例
func (r *formRepo) Ensure(ctx context.Context, key SubjectKey, createdBy string) (*model.FormInstance, error) {
	y, m, d := key.FormDate.Date()
	form := &model.FormInstance{
		FeatureKey: key.FeatureKey,
		RoleKey:    key.RoleKey,
		FormDate:   time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		Depo:       key.Depo,
	}
	if createdBy != "" {
		form.CreatedBy = &createdBy
		form.UpdatedBy = &createdBy
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feature_key"}, {Name: "role_key"}, {Name: "form_date"}, {Name: "depo"}},
			DoNothing: true,
		}).
		Create(form).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, key)
}

func (r *formRepo) UpsertValues(ctx context.Context, records []model.ValueRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "form_id"}, {Name: "field_id"}, {Name: "member_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "score", "updated_at", "updated_by"}),
		}).
		Create(&records).Error
}

func (r *formRepo) ListValues(ctx context.Context, formID string) ([]model.ValueRecord, error) {
	var records []model.ValueRecord
	err := r.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("field_id ASC, member_key ASC").
		Find(&records).Error
	return records, err
}
