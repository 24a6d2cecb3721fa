package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Profile  ProfileRepository
	Section  SectionRepository
	Field    FieldRepository
	Schedule ScheduleRepository
	Member   MemberRepository
	Form     FormRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Profile:  NewProfileRepo(db),
		Section:  NewSectionRepo(db),
		Field:    NewFieldRepo(db),
		Schedule: NewScheduleRepo(db),
		Member:   NewMemberRepo(db),
		Form:     NewFormRepo(db),
	}
}
