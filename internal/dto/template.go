package dto

// ── 模板分组 DTO ──

// CreateSectionRequest 创建分组请求
// Role 为空表示多角色共用分组
type CreateSectionRequest struct {
	Role   string `json:"role"   binding:"omitempty,max=50"`
	Period string `json:"period" binding:"omitempty,oneof=daily weekly monthly"`
	Title  string `json:"title"  binding:"required,max=200"`
}

// UpdateSectionRequest 更新分组请求
// WeeklyOpenDates 非 nil 时整体替换该分组的周排期（空数组表示清空）
type UpdateSectionRequest struct {
	Title           *string `json:"title"             binding:"omitempty,max=200"`
	Idx             *int    `json:"idx"               binding:"omitempty,min=0"`
	WeeklyOpenDates *[]int  `json:"weekly_open_dates"`
}

// SectionResponse 分组响应
type SectionResponse struct {
	ID              string          `json:"id"`
	Feature         string          `json:"feature"`
	Role            *string         `json:"role"`
	Period          string          `json:"period,omitempty"`
	Idx             int             `json:"idx"`
	Title           string          `json:"title"`
	WeeklyOpenDates []int           `json:"weekly_open_dates,omitempty"`
	Fields          []FieldResponse `json:"fields,omitempty"`
}

// ── 模板字段 DTO ──

// CreateFieldRequest 创建字段请求
type CreateFieldRequest struct {
	Label       string   `json:"label"       binding:"required,max=300"`
	Type        string   `json:"type"        binding:"required"`
	Kind        string   `json:"kind"        binding:"omitempty,oneof=scored descriptive"`
	Options     []string `json:"options"`
	Help        *string  `json:"help"`
	Min         *float64 `json:"min"`
	Max         *float64 `json:"max"`
	Suffix      *string  `json:"suffix"      binding:"omitempty,max=30"`
	Placeholder *string  `json:"placeholder" binding:"omitempty,max=200"`
	GroupKey    *string  `json:"group_key"   binding:"omitempty,max=50"`
	GroupLabel  *string  `json:"group_label" binding:"omitempty,max=200"`
	GroupOrder  *int     `json:"group_order"`
}

// UpdateFieldRequest 更新字段请求（仅覆盖非 nil 项）
type UpdateFieldRequest struct {
	Label       *string   `json:"label"       binding:"omitempty,max=300"`
	Type        *string   `json:"type"`
	Kind        *string   `json:"kind"        binding:"omitempty,oneof=scored descriptive"`
	Options     *[]string `json:"options"`
	Idx         *int      `json:"idx"         binding:"omitempty,min=0"`
	Help        *string   `json:"help"`
	Min         *float64  `json:"min"`
	Max         *float64  `json:"max"`
	Suffix      *string   `json:"suffix"      binding:"omitempty,max=30"`
	Placeholder *string   `json:"placeholder" binding:"omitempty,max=200"`
	GroupKey    *string   `json:"group_key"   binding:"omitempty,max=50"`
	GroupLabel  *string   `json:"group_label" binding:"omitempty,max=200"`
	GroupOrder  *int      `json:"group_order"`
}

// FieldResponse 字段响应
type FieldResponse struct {
	ID          string   `json:"id"`
	SectionID   string   `json:"section_id"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Kind        string   `json:"kind"`
	Options     []string `json:"options,omitempty"`
	Idx         int      `json:"idx"`
	Help        *string  `json:"help,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Suffix      *string  `json:"suffix,omitempty"`
	Placeholder *string  `json:"placeholder,omitempty"`
	GroupKey    *string  `json:"group_key,omitempty"`
	GroupLabel  *string  `json:"group_label,omitempty"`
	GroupOrder  *int     `json:"group_order,omitempty"`
}
