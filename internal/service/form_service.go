package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
	pkgerrors "astro-distribusi/backend/pkg/errors"
	"astro-distribusi/backend/pkg/metrics"
)

// FormService 面向调用方的表单门面：解析角色与日期后组合模板、排期与采集值
type FormService interface {
	// VisibleForm 返回调用方在指定日期可见的分组（可选附带字段）与解析元数据
	VisibleForm(ctx context.Context, caller *Caller, q *dto.FormQuery) (*dto.VisibleFormResponse, error)
	// SubmitValues 解析作用域后整批写入采集值
	SubmitValues(ctx context.Context, caller *Caller, req *dto.SubmitValuesRequest) (*dto.SubmitValuesResponse, error)
	// Progress 统计当天可见计分字段的填写情况
	Progress(ctx context.Context, caller *Caller, q *dto.FormQuery) (*dto.ProgressResponse, error)
}

type formService struct {
	engine   *config.EngineConfig
	role     RoleResolver
	template TemplateService
	schedule ScheduleService
	capture  CaptureService
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewFormService 创建 FormService 实例
func NewFormService(
	engine *config.EngineConfig,
	role RoleResolver,
	template TemplateService,
	schedule ScheduleService,
	capture CaptureService,
	m *metrics.Metrics,
	logger *zap.Logger,
) FormService {
	return &formService{
		engine:   engine,
		role:     role,
		template: template,
		schedule: schedule,
		capture:  capture,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── VisibleForm ──────────────────────

func (s *formService) VisibleForm(ctx context.Context, caller *Caller, q *dto.FormQuery) (*dto.VisibleFormResponse, error) {
	date, err := ParseFormDate(q.Date, s.engine.Location(), s.now())
	if err != nil {
		return nil, err
	}

	resp := emptyForm(date)
	feature := strings.TrimSpace(q.Feature)
	if feature == "" {
		return resp, nil
	}

	role, err := s.role.Resolve(ctx, caller, q.Role)
	if err != nil {
		return nil, err
	}
	if role == "" {
		return resp, nil
	}
	resp.Meta.Role = role

	var period *string
	if q.Period != "" {
		if !model.ValidPeriod(q.Period) {
			return nil, pkgerrors.NewValidation("未知的分组周期: %q", q.Period)
		}
		period = &q.Period
	}

	sections, err := s.template.ListSections(ctx, feature, role, period)
	if err != nil {
		return nil, err
	}

	res := ResolveDay(nil, date)
	if s.engine.IsDateSensitive(feature) {
		res, err = s.schedule.Resolve(ctx, feature, role, date)
		if err != nil {
			return nil, err
		}
	}
	resp.Meta.Mode = res.Mode
	resp.Meta.HasWeeklySchedule = res.HasWeeklySchedule
	resp.Meta.TodayScheduled = res.TodayScheduled
	resp.Meta.WeeklySummary = res.WeeklySummary

	visible, err := s.filterSections(ctx, feature, role, date, sections, res)
	if err != nil {
		return nil, err
	}

	var fieldsBySection map[string][]model.Field
	if q.IncludeFields && len(visible) > 0 {
		ids := make([]string, 0, len(visible))
		for _, sec := range visible {
			ids = append(ids, sec.SectionID)
		}
		fields, err := s.template.ListFields(ctx, ids)
		if err != nil {
			return nil, err
		}
		SortFields(fields)
		fieldsBySection = make(map[string][]model.Field, len(visible))
		for _, f := range fields {
			fieldsBySection[f.SectionID] = append(fieldsBySection[f.SectionID], f)
		}
	}

	for i := range visible {
		sr := toSectionResponse(&visible[i], nil)
		if q.IncludeFields {
			sr.Fields = make([]dto.FieldResponse, 0, len(fieldsBySection[visible[i].SectionID]))
			for j := range fieldsBySection[visible[i].SectionID] {
				sr.Fields = append(sr.Fields, *toFieldResponse(&fieldsBySection[visible[i].SectionID][j]))
			}
		}
		resp.Sections = append(resp.Sections, *sr)
	}

	if s.metrics != nil {
		s.metrics.Resolutions.WithLabelValues(feature, res.Mode).Inc()
	}
	return resp, nil
}

// filterSections 周/月周期分组按开放日过滤，其余分组按周排期解析结果过滤
func (s *formService) filterSections(ctx context.Context, feature, role string, date time.Time, sections []model.Section, res *Resolution) ([]model.Section, error) {
	SortSections(sections)

	open := make(map[string]bool, 2)
	out := make([]model.Section, 0, len(sections))
	for _, sec := range sections {
		if !res.Allows(sec.SectionID) {
			continue
		}
		if sec.Period == model.PeriodWeekly || sec.Period == model.PeriodMonthly {
			ok, known := open[sec.Period]
			if !known {
				var err error
				ok, err = s.schedule.PeriodOpen(ctx, feature, role, sec.Period, date)
				if err != nil {
					return nil, err
				}
				open[sec.Period] = ok
			}
			if !ok {
				continue
			}
		}
		out = append(out, sec)
	}
	return out, nil
}

func emptyForm(date time.Time) *dto.VisibleFormResponse {
	dow := IsoWeekday(date)
	return &dto.VisibleFormResponse{
		Sections: []dto.SectionResponse{},
		Meta: dto.FormMeta{
			Date:          date.Format(dateLayout),
			DayOfWeek:     dow,
			DayName:       DayName(dow),
			Mode:          model.ModeFlexible,
			WeeklySummary: []dto.WeeklyEntry{},
		},
	}
}

// ────────────────────── SubmitValues ──────────────────────

func (s *formService) SubmitValues(ctx context.Context, caller *Caller, req *dto.SubmitValuesRequest) (*dto.SubmitValuesResponse, error) {
	key, err := s.subjectKey(ctx, caller, req.Feature, req.Role, req.Date, req.Depo)
	if err != nil {
		return nil, err
	}
	return s.capture.UpsertValues(ctx, key, req.Records, caller.UserID)
}

func (s *formService) subjectKey(ctx context.Context, caller *Caller, feature, requestedRole, rawDate, depo string) (repository.SubjectKey, error) {
	date, err := ParseFormDate(rawDate, s.engine.Location(), s.now())
	if err != nil {
		return repository.SubjectKey{}, err
	}
	feature = strings.TrimSpace(feature)
	if feature == "" {
		return repository.SubjectKey{}, pkgerrors.NewValidation("feature 不能为空")
	}
	role, err := s.role.Resolve(ctx, caller, requestedRole)
	if err != nil {
		return repository.SubjectKey{}, err
	}
	if role == "" {
		return repository.SubjectKey{}, ErrRoleUnresolved
	}
	return repository.SubjectKey{
		FeatureKey: feature,
		RoleKey:    role,
		FormDate:   date,
		Depo:       strings.TrimSpace(depo),
	}, nil
}

// ────────────────────── Progress ──────────────────────

func (s *formService) Progress(ctx context.Context, caller *Caller, q *dto.FormQuery) (*dto.ProgressResponse, error) {
	visible, err := s.VisibleForm(ctx, caller, &dto.FormQuery{
		Feature:       q.Feature,
		Role:          q.Role,
		Date:          q.Date,
		Period:        q.Period,
		IncludeFields: true,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.ProgressResponse{Role: visible.Meta.Role, Date: visible.Meta.Date}
	if visible.Meta.Role == "" {
		return resp, nil
	}

	scored := make(map[string]bool)
	for _, sec := range visible.Sections {
		for _, f := range sec.Fields {
			if f.Kind != model.KindDescriptive {
				scored[f.ID] = true
			}
		}
	}
	resp.TotalFields = len(scored)

	key, err := s.subjectKey(ctx, caller, q.Feature, q.Role, q.Date, q.Depo)
	if err != nil {
		return nil, err
	}
	form, err := s.capture.GetForm(ctx, key)
	if err != nil {
		return nil, err
	}
	if form == nil {
		return resp, nil
	}
	resp.FormID = form.FormID

	records, err := s.capture.ListValues(ctx, form.FormID)
	if err != nil {
		return nil, err
	}
	filled := make(map[string]bool)
	for _, r := range records {
		if scored[r.FieldID] && (strings.TrimSpace(r.Value) != "" || r.Score != nil) {
			filled[r.FieldID] = true
		}
	}
	resp.FilledFields = len(filled)
	return resp, nil
}

// ── 排序 ──

// SortSections 按 idx 升序；idx 相同时按创建时间、ID 保证输出稳定
func SortSections(sections []model.Section) {
	sort.SliceStable(sections, func(i, j int) bool {
		a, b := sections[i], sections[j]
		if a.Idx != b.Idx {
			return a.Idx < b.Idx
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.SectionID < b.SectionID
	})
}

// SortFields 按 (group_key, group_order, idx) 升序，空值在前；未分组字段排在分组字段之前
func SortFields(fields []model.Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		a, b := fields[i], fields[j]
		if c := compareNullString(a.GroupKey, b.GroupKey); c != 0 {
			return c < 0
		}
		if c := compareNullInt(a.GroupOrder, b.GroupOrder); c != 0 {
			return c < 0
		}
		if a.Idx != b.Idx {
			return a.Idx < b.Idx
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.FieldID < b.FieldID
	})
}

func compareNullString(a, b *string) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return strings.Compare(*a, *b)
}

func compareNullInt(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}
