package dto

// ── 可见表单 DTO ──

// FormQuery 可见表单查询参数
type FormQuery struct {
	Feature       string `form:"-"`
	Role          string `form:"role"`
	Date          string `form:"date"`
	Period        string `form:"period"         binding:"omitempty,oneof=daily weekly monthly"`
	Depo          string `form:"depo"`
	IncludeFields bool   `form:"include_fields"`
}

// WeeklyEntry 周排期概览中的一项
type WeeklyEntry struct {
	DayOfWeek    int    `json:"day_of_week"`
	DayName      string `json:"day_name"`
	SectionID    string `json:"section_id"`
	SectionTitle string `json:"section_title,omitempty"`
}

// FormMeta 可见表单的解析元数据
type FormMeta struct {
	Role              string        `json:"role"`
	Date              string        `json:"date"`
	DayOfWeek         int           `json:"day_of_week"`
	DayName           string        `json:"day_name"`
	Mode              string        `json:"mode"`
	HasWeeklySchedule bool          `json:"has_weekly_schedule"`
	TodayScheduled    bool          `json:"today_scheduled"`
	WeeklySummary     []WeeklyEntry `json:"weekly_summary"`
}

// VisibleFormResponse 当天可见的分组与字段
type VisibleFormResponse struct {
	Sections []SectionResponse `json:"sections"`
	Meta     FormMeta          `json:"meta"`
}

// ── 采集值 DTO ──

// ValueInput 提交的单条采集值
type ValueInput struct {
	FieldID string  `json:"field_id"`
	Member  *string `json:"member"`
	Value   *string `json:"value"`
	Score   *int    `json:"score"`
}

// SubmitValuesRequest 批量提交采集值请求
type SubmitValuesRequest struct {
	Feature string       `json:"feature" binding:"required,max=50"`
	Role    string       `json:"role"    binding:"omitempty,max=50"`
	Date    string       `json:"date"`
	Depo    string       `json:"depo"    binding:"omitempty,max=50"`
	Records []ValueInput `json:"records" binding:"required,min=1,max=500"`
}

// SubmitValuesResponse 批量提交结果
type SubmitValuesResponse struct {
	FormID  string `json:"form_id"`
	Saved   int    `json:"saved"`
	Skipped int    `json:"skipped"`
}

// ProgressResponse 当天表单填写进度
type ProgressResponse struct {
	FormID       string `json:"form_id,omitempty"`
	Role         string `json:"role"`
	Date         string `json:"date"`
	TotalFields  int    `json:"total_fields"`
	FilledFields int    `json:"filled_fields"`
}
