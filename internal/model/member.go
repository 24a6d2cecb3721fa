package model

// Profile 用户档案，对应 profiles，提供调用方自身角色
type Profile struct {
	UserID  string  `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	Name    string  `gorm:"type:varchar(100);not null"  json:"name"`
	RoleKey *string `gorm:"type:varchar(50)"            json:"role_key,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }

// Member 角色成员，对应 role_members，作为评估/检查对象
type Member struct {
	MemberID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"member_id"`
	RoleKey  string `gorm:"type:varchar(50);not null"                      json:"role_key"`
	Name     string `gorm:"type:varchar(100);not null"                     json:"name"`
	Idx      int    `gorm:"not null;default:0"                             json:"idx"`
	IsActive bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Member) TableName() string { return "role_members" }
