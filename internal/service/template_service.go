package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
	pkgerrors "astro-distribusi/backend/pkg/errors"
)

// TemplateService 模板分组与字段业务接口
// 所有写操作在访问存储之前校验提权身份
type TemplateService interface {
	// ListSections 读取 (feature, role) 的分组（含共用分组），按 idx 排序
	ListSections(ctx context.Context, feature, role string, period *string) ([]model.Section, error)
	// ListFields 批量读取分组下的字段
	ListFields(ctx context.Context, sectionIDs []string) ([]model.Field, error)

	CreateSection(ctx context.Context, caller *Caller, feature string, req *dto.CreateSectionRequest) (*dto.SectionResponse, error)
	UpdateSection(ctx context.Context, caller *Caller, id string, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error)
	DeleteSection(ctx context.Context, caller *Caller, id string) error

	CreateField(ctx context.Context, caller *Caller, sectionID string, req *dto.CreateFieldRequest) (*dto.FieldResponse, error)
	UpdateField(ctx context.Context, caller *Caller, id string, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error)
	DeleteField(ctx context.Context, caller *Caller, id string) error
}

type templateService struct {
	repo     *repository.Repository
	ordinal  OrdinalAllocator
	schedule ScheduleService
	logger   *zap.Logger
}

// NewTemplateService 创建 TemplateService 实例
func NewTemplateService(repo *repository.Repository, ordinal OrdinalAllocator, schedule ScheduleService, logger *zap.Logger) TemplateService {
	return &templateService{repo: repo, ordinal: ordinal, schedule: schedule, logger: logger}
}

func requireElevated(caller *Caller) error {
	if caller == nil || !caller.Elevated {
		return pkgerrors.ErrPrivilege
	}
	return nil
}

// ────────────────────── Read ──────────────────────

func (s *templateService) ListSections(ctx context.Context, feature, role string, period *string) ([]model.Section, error) {
	sections, err := s.repo.Section.List(ctx, repository.SectionScope{
		FeatureKey:    feature,
		RoleKey:       &role,
		Period:        period,
		IncludeShared: true,
	})
	if err != nil {
		s.logger.Error("查询分组失败", zap.String("feature", feature), zap.String("role", role), zap.Error(err))
		return nil, pkgerrors.Store("section.list", err)
	}
	return sections, nil
}

func (s *templateService) ListFields(ctx context.Context, sectionIDs []string) ([]model.Field, error) {
	fields, err := s.repo.Field.ListBySections(ctx, sectionIDs)
	if err != nil {
		s.logger.Error("查询字段失败", zap.Error(err))
		return nil, pkgerrors.Store("field.list", err)
	}
	return fields, nil
}

// ────────────────────── CreateSection ──────────────────────

func (s *templateService) CreateSection(ctx context.Context, caller *Caller, feature string, req *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	feature = strings.TrimSpace(feature)
	title := strings.TrimSpace(req.Title)
	if feature == "" {
		return nil, pkgerrors.NewValidation("feature 不能为空")
	}
	if title == "" {
		return nil, pkgerrors.NewValidation("分组标题不能为空")
	}
	if !model.ValidPeriod(req.Period) {
		return nil, pkgerrors.NewValidation("未知的分组周期: %q", req.Period)
	}

	section := &model.Section{
		FeatureKey: feature,
		Period:     req.Period,
		Title:      title,
	}
	if role := strings.TrimSpace(req.Role); role != "" {
		section.RoleKey = &role
	}
	section.CreatedBy = &caller.UserID
	section.UpdatedBy = &caller.UserID

	// 同一作用域（feature, role, period）内的序号连续递增
	scope := repository.SectionScope{FeatureKey: feature, RoleKey: section.RoleKey, Period: &section.Period}
	_, err := s.ordinal.Allocate(ctx, sectionScopeKey(section),
		func(ctx context.Context) (int, error) { return s.repo.Section.MaxIdx(ctx, scope) },
		func(idx int) error {
			section.Idx = idx
			return s.repo.Section.Create(ctx, section)
		},
	)
	if err != nil {
		s.logger.Error("创建分组失败", zap.String("feature", feature), zap.Error(err))
		return nil, pkgerrors.Store("section.create", err)
	}

	s.logger.Info("分组已创建",
		zap.String("section_id", section.SectionID),
		zap.String("feature", feature),
		zap.Int("idx", section.Idx),
	)
	return toSectionResponse(section, nil), nil
}

func sectionScopeKey(section *model.Section) string {
	role := "*"
	if section.RoleKey != nil {
		role = *section.RoleKey
	}
	return fmt.Sprintf("section:%s:%s:%s", section.FeatureKey, role, section.Period)
}

// ────────────────────── UpdateSection ──────────────────────

func (s *templateService) UpdateSection(ctx context.Context, caller *Caller, id string, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	section, err := s.getSection(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, pkgerrors.NewValidation("分组标题不能为空")
		}
		section.Title = title
	}
	if req.Idx != nil {
		// 仅覆盖自身序号，不重排兄弟分组
		section.Idx = *req.Idx
	}

	// 排期参数先于任何写入校验
	if req.WeeklyOpenDates != nil {
		if section.RoleKey == nil {
			return nil, ErrSharedSectionSchedule
		}
		if _, err := normalizeDays(*req.WeeklyOpenDates, 7); err != nil {
			return nil, err
		}
	}

	// 分组先于排期写入
	section.UpdatedBy = &caller.UserID
	if err := s.repo.Section.Update(ctx, section); err != nil {
		s.logger.Error("更新分组失败", zap.String("section_id", section.SectionID), zap.Error(err))
		return nil, pkgerrors.Store("section.update", err)
	}

	var days []int
	if req.WeeklyOpenDates != nil {
		days, err = s.schedule.SetSectionDays(ctx, section, *req.WeeklyOpenDates)
	} else {
		days, err = s.schedule.SectionDays(ctx, section.SectionID)
	}
	if err != nil {
		return nil, err
	}

	return toSectionResponse(section, days), nil
}

// ────────────────────── DeleteSection ──────────────────────

// DeleteSection 级联删除字段与周排期，之后不会残留孤立字段
func (s *templateService) DeleteSection(ctx context.Context, caller *Caller, id string) error {
	if err := requireElevated(caller); err != nil {
		return err
	}

	section, err := s.getSection(ctx, id)
	if err != nil {
		return err
	}
	id = section.SectionID

	if err := s.repo.Field.DeleteBySection(ctx, id); err != nil {
		s.logger.Error("删除分组字段失败", zap.String("section_id", id), zap.Error(err))
		return pkgerrors.Store("field.delete_by_section", err)
	}
	if err := s.schedule.ClearSection(ctx, section); err != nil {
		return err
	}
	if err := s.repo.Section.Delete(ctx, id); err != nil {
		s.logger.Error("删除分组失败", zap.String("section_id", id), zap.Error(err))
		return pkgerrors.Store("section.delete", err)
	}

	s.logger.Info("分组已删除", zap.String("section_id", id), zap.String("feature", section.FeatureKey))
	return nil
}

func (s *templateService) getSection(ctx context.Context, rawID string) (*model.Section, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, ErrSectionNotFound
	}
	section, err := s.repo.Section.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSectionNotFound
		}
		s.logger.Error("查询分组失败", zap.String("section_id", id), zap.Error(err))
		return nil, pkgerrors.Store("section.get", err)
	}
	return section, nil
}

// ────────────────────── CreateField ──────────────────────

func (s *templateService) CreateField(ctx context.Context, caller *Caller, sectionID string, req *dto.CreateFieldRequest) (*dto.FieldResponse, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	section, err := s.getSection(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	sectionID = section.SectionID

	field := &model.Field{
		SectionID:   sectionID,
		Label:       strings.TrimSpace(req.Label),
		Type:        req.Type,
		Kind:        req.Kind,
		Options:     pq.StringArray(req.Options),
		Help:        req.Help,
		Min:         req.Min,
		Max:         req.Max,
		Suffix:      req.Suffix,
		Placeholder: req.Placeholder,
		GroupKey:    req.GroupKey,
		GroupLabel:  req.GroupLabel,
		GroupOrder:  req.GroupOrder,
	}
	if err := validateField(field); err != nil {
		return nil, err
	}
	field.CreatedBy = &caller.UserID
	field.UpdatedBy = &caller.UserID

	_, err = s.ordinal.Allocate(ctx, "field:"+sectionID,
		func(ctx context.Context) (int, error) { return s.repo.Field.MaxIdx(ctx, sectionID) },
		func(idx int) error {
			field.Idx = idx
			return s.repo.Field.Create(ctx, field)
		},
	)
	if err != nil {
		s.logger.Error("创建字段失败", zap.String("section_id", sectionID), zap.Error(err))
		return nil, pkgerrors.Store("field.create", err)
	}

	return toFieldResponse(field), nil
}

// ────────────────────── UpdateField ──────────────────────

func (s *templateService) UpdateField(ctx context.Context, caller *Caller, id string, req *dto.UpdateFieldRequest) (*dto.FieldResponse, error) {
	if err := requireElevated(caller); err != nil {
		return nil, err
	}

	field, err := s.getField(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		field.Label = strings.TrimSpace(*req.Label)
	}
	if req.Type != nil {
		field.Type = *req.Type
	}
	if req.Kind != nil {
		field.Kind = *req.Kind
	}
	if req.Options != nil {
		field.Options = pq.StringArray(*req.Options)
	}
	if req.Idx != nil {
		field.Idx = *req.Idx
	}
	if req.Help != nil {
		field.Help = req.Help
	}
	if req.Min != nil {
		field.Min = req.Min
	}
	if req.Max != nil {
		field.Max = req.Max
	}
	if req.Suffix != nil {
		field.Suffix = req.Suffix
	}
	if req.Placeholder != nil {
		field.Placeholder = req.Placeholder
	}
	if req.GroupKey != nil {
		field.GroupKey = req.GroupKey
	}
	if req.GroupLabel != nil {
		field.GroupLabel = req.GroupLabel
	}
	if req.GroupOrder != nil {
		field.GroupOrder = req.GroupOrder
	}

	if err := validateField(field); err != nil {
		return nil, err
	}
	field.UpdatedBy = &caller.UserID

	if err := s.repo.Field.Update(ctx, field); err != nil {
		s.logger.Error("更新字段失败", zap.String("field_id", id), zap.Error(err))
		return nil, pkgerrors.Store("field.update", err)
	}
	return toFieldResponse(field), nil
}

// ────────────────────── DeleteField ──────────────────────

func (s *templateService) DeleteField(ctx context.Context, caller *Caller, id string) error {
	if err := requireElevated(caller); err != nil {
		return err
	}

	field, err := s.getField(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Field.Delete(ctx, field.FieldID); err != nil {
		s.logger.Error("删除字段失败", zap.String("field_id", field.FieldID), zap.Error(err))
		return pkgerrors.Store("field.delete", err)
	}
	return nil
}

func (s *templateService) getField(ctx context.Context, rawID string) (*model.Field, error) {
	id, ok := parseID(rawID)
	if !ok {
		return nil, ErrFieldNotFound
	}
	field, err := s.repo.Field.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFieldNotFound
		}
		s.logger.Error("查询字段失败", zap.String("field_id", id), zap.Error(err))
		return nil, pkgerrors.Store("field.get", err)
	}
	return field, nil
}

// ── 字段校验 ──

// validateField 校验类型、种类、选项与数值范围；Kind 为空时补为 scored
func validateField(f *model.Field) error {
	if f.Label == "" {
		return pkgerrors.NewValidation("字段标签不能为空")
	}
	if !model.ValidFieldType(f.Type) {
		return pkgerrors.NewValidation("未知的字段类型: %q", f.Type)
	}

	switch f.Kind {
	case "":
		f.Kind = model.KindScored
	case model.KindScored, model.KindDescriptive:
	default:
		return pkgerrors.NewValidation("未知的字段种类: %q", f.Kind)
	}

	if model.IsChoiceType(f.Type) {
		if len(f.Options) == 0 {
			return pkgerrors.NewValidation("%s 类型字段必须提供 options", f.Type)
		}
		seen := make(map[string]bool, len(f.Options))
		for i, opt := range f.Options {
			opt = strings.TrimSpace(opt)
			if opt == "" {
				return pkgerrors.NewValidation("第 %d 个选项为空", i+1)
			}
			if seen[opt] {
				return pkgerrors.NewValidation("选项重复: %q", opt)
			}
			seen[opt] = true
			f.Options[i] = opt
		}
	} else if len(f.Options) > 0 {
		return pkgerrors.NewValidation("%s 类型字段不接受 options", f.Type)
	}

	if (f.Min != nil || f.Max != nil) && !model.IsNumericType(f.Type) {
		return pkgerrors.NewValidation("%s 类型字段不接受 min/max", f.Type)
	}
	if f.Min != nil && f.Max != nil && *f.Min > *f.Max {
		return pkgerrors.NewValidation("min 不能大于 max")
	}
	return nil
}

// ── 响应映射 ──

func toSectionResponse(section *model.Section, days []int) *dto.SectionResponse {
	return &dto.SectionResponse{
		ID:              section.SectionID,
		Feature:         section.FeatureKey,
		Role:            section.RoleKey,
		Period:          section.Period,
		Idx:             section.Idx,
		Title:           section.Title,
		WeeklyOpenDates: days,
	}
}

func toFieldResponse(field *model.Field) *dto.FieldResponse {
	return &dto.FieldResponse{
		ID:          field.FieldID,
		SectionID:   field.SectionID,
		Label:       field.Label,
		Type:        field.Type,
		Kind:        field.Kind,
		Options:     []string(field.Options),
		Idx:         field.Idx,
		Help:        field.Help,
		Min:         field.Min,
		Max:         field.Max,
		Suffix:      field.Suffix,
		Placeholder: field.Placeholder,
		GroupKey:    field.GroupKey,
		GroupLabel:  field.GroupLabel,
		GroupOrder:  field.GroupOrder,
	}
}
