package model

import "time"

// FormInstance 表单实例头，对应 form_instances
// 以 (feature_key, role_key, form_date, depo) 为自然键，首次读写时惰性创建
type FormInstance struct {
	FormID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"form_id"`
	FeatureKey string    `gorm:"type:varchar(50);not null"                      json:"feature_key"`
	RoleKey    string    `gorm:"type:varchar(50);not null"                      json:"role_key"`
	FormDate   time.Time `gorm:"type:date;not null"                             json:"form_date"`
	Depo       string    `gorm:"type:varchar(50);not null;default:''"           json:"depo,omitempty"`
	BaseModel
}

// TableName 指定表名
func (FormInstance) TableName() string { return "form_instances" }

// ValueRecord 采集值，对应 value_records
// 身份为 (form_id, field_id, member_key)，重复提交覆盖而不新增
type ValueRecord struct {
	RecordID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"record_id"`
	FormID    string `gorm:"type:uuid;not null"                             json:"form_id"`
	FieldID   string `gorm:"type:uuid;not null"                             json:"field_id"`
	MemberKey string `gorm:"type:varchar(100);not null;default:''"          json:"member,omitempty"`
	Value     string `gorm:"type:text;not null;default:''"                  json:"value"`
	Score     *int   `json:"score,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ValueRecord) TableName() string { return "value_records" }
