package model

import "github.com/lib/pq"

// ── 分组周期 ──

const (
	PeriodNone    = ""
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// ValidPeriod 判断周期取值是否合法
func ValidPeriod(p string) bool {
	switch p {
	case PeriodNone, PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	}
	return false
}

// ── 字段类型 ──

const (
	FieldRadio     = "radio"
	FieldNumber    = "number"
	FieldText      = "text"
	FieldTextarea  = "textarea"
	FieldCurrency  = "currency"
	FieldCheckbox  = "checkbox"
	FieldSelect    = "select"
	FieldDate      = "date"
	FieldSignature = "signature"
	FieldImage     = "image"
	FieldScore     = "score"
)

var fieldTypes = map[string]bool{
	FieldRadio: true, FieldNumber: true, FieldText: true, FieldTextarea: true,
	FieldCurrency: true, FieldCheckbox: true, FieldSelect: true, FieldDate: true,
	FieldSignature: true, FieldImage: true, FieldScore: true,
}

// ValidFieldType 判断字段类型是否属于固定集合
func ValidFieldType(t string) bool {
	return fieldTypes[t]
}

// IsChoiceType 选择类字段必须带 options
func IsChoiceType(t string) bool {
	return t == FieldRadio || t == FieldSelect || t == FieldCheckbox
}

// IsNumericType 数值类字段按 min/max 校验
func IsNumericType(t string) bool {
	return t == FieldNumber || t == FieldCurrency
}

// ── 字段种类 ──

// FieldKind 区分计分项与说明文字，取代 group_order = 99 的哨兵约定
const (
	KindScored      = "scored"
	KindDescriptive = "descriptive"
)

// Section 表单分组，对应 template_sections
type Section struct {
	SectionID  string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"section_id"`
	FeatureKey string  `gorm:"type:varchar(50);not null"                      json:"feature_key"`
	RoleKey    *string `gorm:"type:varchar(50)"                               json:"role_key,omitempty"` // NULL 表示多角色共用
	Period     string  `gorm:"type:varchar(10);not null;default:''"           json:"period,omitempty"`
	Idx        int     `gorm:"not null;default:0"                             json:"idx"`
	Title      string  `gorm:"type:varchar(200);not null"                     json:"title"`
	BaseModel
}

// TableName 指定表名
func (Section) TableName() string { return "template_sections" }

// Field 表单字段，对应 template_fields，随所属 Section 一起删除
type Field struct {
	FieldID     string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"field_id"`
	SectionID   string         `gorm:"type:uuid;not null"                             json:"section_id"`
	Label       string         `gorm:"type:varchar(300);not null"                     json:"label"`
	Type        string         `gorm:"type:varchar(20);not null"                      json:"type"`
	Kind        string         `gorm:"type:varchar(20);not null;default:'scored'"     json:"kind"`
	Options     pq.StringArray `gorm:"type:text[]"                                    json:"options,omitempty"`
	Idx         int            `gorm:"not null;default:0"                             json:"idx"`
	Help        *string        `gorm:"type:text"                                      json:"help,omitempty"`
	Min         *float64       `json:"min,omitempty"`
	Max         *float64       `json:"max,omitempty"`
	Suffix      *string        `gorm:"type:varchar(30)"                               json:"suffix,omitempty"`
	Placeholder *string        `gorm:"type:varchar(200)"                              json:"placeholder,omitempty"`
	GroupKey    *string        `gorm:"type:varchar(50)"                               json:"group_key,omitempty"`
	GroupLabel  *string        `gorm:"type:varchar(200)"                              json:"group_label,omitempty"`
	GroupOrder  *int           `json:"group_order,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Field) TableName() string { return "template_fields" }
