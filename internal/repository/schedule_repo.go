package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"astro-distribusi/backend/internal/model"
)

// ScheduleRepository 周排期、排期模式与周期开放日数据访问接口
type ScheduleRepository interface {
	ListEntries(ctx context.Context, featureKey, roleKey string) ([]model.ScheduleEntry, error)
	ListEntriesBySection(ctx context.Context, sectionID string) ([]model.ScheduleEntry, error)
	// ReplaceSectionEntries 在同一事务内替换分组的周排期并重算作用域模式，返回新模式
	// 同一 (feature, role) 的并发替换通过事务级 advisory lock 串行
	ReplaceSectionEntries(ctx context.Context, featureKey, roleKey, sectionID string, days []int) (string, error)

	GetMode(ctx context.Context, featureKey, roleKey string) (*model.ScheduleMode, error)

	GetPeriod(ctx context.Context, featureKey, roleKey string) (*model.PeriodSchedule, error)
	SavePeriod(ctx context.Context, period *model.PeriodSchedule) error
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

// ── 周排期条目 ──

func (r *scheduleRepo) ListEntries(ctx context.Context, featureKey, roleKey string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Preload("Section").
		Where("feature_key = ? AND role_key = ?", featureKey, roleKey).
		Order("day_of_week ASC, created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleRepo) ListEntriesBySection(ctx context.Context, sectionID string) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	err := r.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("day_of_week ASC").
		Find(&entries).Error
	return entries, err
}

func (r *scheduleRepo) ReplaceSectionEntries(ctx context.Context, featureKey, roleKey, sectionID string, days []int) (string, error) {
	var mode string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", scheduleLockKey(featureKey, roleKey)).Error; err != nil {
			return err
		}
		if err := tx.Where("section_id = ?", sectionID).Delete(&model.ScheduleEntry{}).Error; err != nil {
			return err
		}
		if len(days) > 0 {
			entries := make([]model.ScheduleEntry, 0, len(days))
			for _, d := range days {
				entries = append(entries, model.ScheduleEntry{
					FeatureKey: featureKey,
					RoleKey:    roleKey,
					DayOfWeek:  d,
					SectionID:  sectionID,
				})
			}
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}

		var count int64
		if err := tx.Model(&model.ScheduleEntry{}).
			Where("feature_key = ? AND role_key = ?", featureKey, roleKey).
			Count(&count).Error; err != nil {
			return err
		}
		mode = model.ModeFlexible
		if count > 0 {
			mode = model.ModeStrict
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feature_key"}, {Name: "role_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"mode", "updated_at"}),
		}).Create(&model.ScheduleMode{
			FeatureKey: featureKey,
			RoleKey:    roleKey,
			Mode:       mode,
			UpdatedAt:  time.Now(),
		}).Error
	})
	if err != nil {
		return "", err
	}
	return mode, nil
}

func scheduleLockKey(featureKey, roleKey string) string {
	return "schedule:" + featureKey + ":" + roleKey
}

// ── 排期模式 ──

func (r *scheduleRepo) GetMode(ctx context.Context, featureKey, roleKey string) (*model.ScheduleMode, error) {
	var mode model.ScheduleMode
	err := r.db.WithContext(ctx).
		Where("feature_key = ? AND role_key = ?", featureKey, roleKey).
		First(&mode).Error
	if err != nil {
		return nil, err
	}
	return &mode, nil
}

// ── 周期开放日 ──

func (r *scheduleRepo) GetPeriod(ctx context.Context, featureKey, roleKey string) (*model.PeriodSchedule, error) {
	var period model.PeriodSchedule
	err := r.db.WithContext(ctx).
		Where("feature_key = ? AND role_key = ?", featureKey, roleKey).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *scheduleRepo) SavePeriod(ctx context.Context, period *model.PeriodSchedule) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "feature_key"}, {Name: "role_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"weekly", "monthly", "updated_at", "updated_by"}),
		}).
		Create(period).Error
}
