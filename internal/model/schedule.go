package model

import "time"

// ── 排期模式 ──

const (
	ModeFlexible = "flexible" // 无排期条目：所有分组每天可见
	ModeStrict   = "strict"   // 有排期条目：只显示当天排到的分组
)

// ScheduleEntry 周排期条目，对应 schedule_entries
// 表示 (feature, role) 下某个分组在 day_of_week 当天开放
type ScheduleEntry struct {
	EntryID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"entry_id"`
	FeatureKey string    `gorm:"type:varchar(50);not null"                      json:"feature_key"`
	RoleKey    string    `gorm:"type:varchar(50);not null"                      json:"role_key"`
	DayOfWeek  int       `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	SectionID  string    `gorm:"type:uuid;not null"                             json:"section_id"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	// 关联
	Section *Section `gorm:"foreignKey:SectionID;references:SectionID" json:"section,omitempty"`
}

// TableName 指定表名
func (ScheduleEntry) TableName() string { return "schedule_entries" }

// ScheduleMode 作用域排期模式，对应 schedule_modes
// 随排期条目写入时重新计算并保存，读取时不再统计条目数
type ScheduleMode struct {
	FeatureKey string    `gorm:"type:varchar(50);primaryKey"           json:"feature_key"`
	RoleKey    string    `gorm:"type:varchar(50);primaryKey"           json:"role_key"`
	Mode       string    `gorm:"type:varchar(10);not null"             json:"mode"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"    json:"updated_at"`
}

// TableName 指定表名
func (ScheduleMode) TableName() string { return "schedule_modes" }

// PeriodSchedule 周/月周期分组的开放日，对应 period_schedules
type PeriodSchedule struct {
	FeatureKey string   `gorm:"type:varchar(50);primaryKey"     json:"feature_key"`
	RoleKey    string   `gorm:"type:varchar(50);primaryKey"     json:"role_key"`
	Weekly     IntArray `gorm:"type:int[];not null;default:'{}'" json:"weekly"`  // 1-7
	Monthly    IntArray `gorm:"type:int[];not null;default:'{}'" json:"monthly"` // 1-31
	BaseModel
}

// TableName 指定表名
func (PeriodSchedule) TableName() string { return "period_schedules" }
