package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"astro-distribusi/backend/config"
	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
	pkgerrors "astro-distribusi/backend/pkg/errors"
	"astro-distribusi/backend/pkg/metrics"
)

// CaptureService 表单实例与采集值业务接口
type CaptureService interface {
	// GetForm 按自然键读取表单实例；不存在时返回 nil, nil
	GetForm(ctx context.Context, key repository.SubjectKey) (*model.FormInstance, error)
	// EnsureForm 按自然键读取或创建表单实例
	EnsureForm(ctx context.Context, key repository.SubjectKey, callerID string) (*model.FormInstance, error)
	// UpsertValues 整批校验后确保表单实例存在，并按 (form, field, member) 覆盖写入
	// 任一记录不合法时返回 ValidationError，不写入任何数据（包括表单实例）
	UpsertValues(ctx context.Context, key repository.SubjectKey, records []dto.ValueInput, callerID string) (*dto.SubmitValuesResponse, error)
	// ListValues 读取表单实例的全部采集值
	ListValues(ctx context.Context, formID string) ([]model.ValueRecord, error)
}

type captureService struct {
	engine  *config.EngineConfig
	repo    *repository.Repository
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewCaptureService 创建 CaptureService 实例
func NewCaptureService(engine *config.EngineConfig, repo *repository.Repository, m *metrics.Metrics, logger *zap.Logger) CaptureService {
	return &captureService{engine: engine, repo: repo, metrics: m, logger: logger}
}

// ────────────────────── Form instance ──────────────────────

func (s *captureService) GetForm(ctx context.Context, key repository.SubjectKey) (*model.FormInstance, error) {
	form, err := s.repo.Form.Get(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		s.logger.Error("查询表单实例失败", zap.String("feature", key.FeatureKey), zap.String("date", key.DateString()), zap.Error(err))
		return nil, pkgerrors.Store("form.get", err)
	}
	return form, nil
}

func (s *captureService) EnsureForm(ctx context.Context, key repository.SubjectKey, callerID string) (*model.FormInstance, error) {
	if key.FeatureKey == "" || key.RoleKey == "" {
		return nil, pkgerrors.NewValidation("表单实例缺少 feature 或 role")
	}
	form, err := s.repo.Form.Ensure(ctx, key, callerID)
	if err != nil {
		s.logger.Error("创建表单实例失败", zap.String("feature", key.FeatureKey), zap.String("date", key.DateString()), zap.Error(err))
		return nil, pkgerrors.Store("form.ensure", err)
	}
	return form, nil
}

func (s *captureService) ListValues(ctx context.Context, formID string) ([]model.ValueRecord, error) {
	records, err := s.repo.Form.ListValues(ctx, formID)
	if err != nil {
		s.logger.Error("查询采集值失败", zap.String("form_id", formID), zap.Error(err))
		return nil, pkgerrors.Store("value.list", err)
	}
	return records, nil
}

// ────────────────────── UpsertValues ──────────────────────

type valueKey struct {
	fieldID string
	member  string
}

func (s *captureService) UpsertValues(ctx context.Context, key repository.SubjectKey, records []dto.ValueInput, callerID string) (*dto.SubmitValuesResponse, error) {
	if key.FeatureKey == "" || key.RoleKey == "" {
		return nil, pkgerrors.NewValidation("表单实例缺少 feature 或 role")
	}

	fieldByID, err := s.scopedFields(ctx, key, records)
	if err != nil {
		return nil, err
	}

	verr := &pkgerrors.ValidationError{}
	memberOK := make(map[string]bool)
	pending := make(map[valueKey]int) // 同一批次内同键记录，后者覆盖前者
	var rows []model.ValueRecord
	skipped := 0

	for i, in := range records {
		fieldID := strings.TrimSpace(in.FieldID)
		if fieldID == "" {
			verr.Add(i, "", "缺少 field_id")
			continue
		}

		value := ""
		if in.Value != nil {
			value = strings.TrimSpace(*in.Value)
		}
		if value == "" && in.Score == nil {
			skipped++
			continue
		}

		canonical, ok := parseID(fieldID)
		if !ok {
			verr.Add(i, fieldID, "field_id 不是有效的 UUID")
			continue
		}
		fieldID = canonical
		field, ok := fieldByID[fieldID]
		if !ok {
			verr.Add(i, fieldID, "字段不属于该表单作用域")
			continue
		}

		member := ""
		if in.Member != nil {
			member = strings.TrimSpace(*in.Member)
		}
		if member != "" {
			active, known := memberOK[member]
			if !known {
				active, err = s.isActiveMember(ctx, key.RoleKey, member)
				if err != nil {
					return nil, err
				}
				memberOK[member] = active
			}
			if !active {
				verr.Add(i, fieldID, "成员不属于该角色或已停用: "+member)
				continue
			}
		}

		score, reason := s.checkValue(field, value, in.Score)
		if reason != "" {
			verr.Add(i, fieldID, reason)
			continue
		}

		row := model.ValueRecord{
			FieldID:   fieldID,
			MemberKey: member,
			Value:     value,
			Score:     score,
		}
		row.CreatedBy = &callerID
		row.UpdatedBy = &callerID

		k := valueKey{fieldID: fieldID, member: member}
		if pos, dup := pending[k]; dup {
			rows[pos] = row
			continue
		}
		pending[k] = len(rows)
		rows = append(rows, row)
	}

	if verr.HasReasons() {
		if s.metrics != nil {
			s.metrics.RecordsRejected.Add(float64(len(verr.Reasons)))
		}
		return nil, verr
	}

	form, err := s.EnsureForm(ctx, key, callerID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].FormID = form.FormID
	}

	if err := s.repo.Form.UpsertValues(ctx, rows); err != nil {
		s.logger.Error("写入采集值失败", zap.String("form_id", form.FormID), zap.Int("count", len(rows)), zap.Error(err))
		return nil, pkgerrors.Store("value.upsert", err)
	}

	if s.metrics != nil {
		s.metrics.RecordsUpserted.Add(float64(len(rows)))
		s.metrics.RecordsSkipped.Add(float64(skipped))
	}
	s.logger.Info("采集值已写入",
		zap.String("form_id", form.FormID),
		zap.Int("saved", len(rows)),
		zap.Int("skipped", skipped),
	)

	return &dto.SubmitValuesResponse{FormID: form.FormID, Saved: len(rows), Skipped: skipped}, nil
}

// scopedFields 批量读取提交涉及的字段，只保留属于 (feature, role) 作用域的字段
func (s *captureService) scopedFields(ctx context.Context, key repository.SubjectKey, records []dto.ValueInput) (map[string]*model.Field, error) {
	ids := make([]string, 0, len(records))
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		id, ok := parseID(r.FieldID)
		if ok && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	fields, err := s.repo.Field.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Store("field.list_by_ids", err)
	}
	sectionIDs := make([]string, 0, len(fields))
	for _, f := range fields {
		sectionIDs = append(sectionIDs, f.SectionID)
	}
	sections, err := s.repo.Section.ListByIDs(ctx, sectionIDs)
	if err != nil {
		return nil, pkgerrors.Store("section.list_by_ids", err)
	}

	inScope := make(map[string]bool, len(sections))
	for _, sec := range sections {
		if sec.FeatureKey != key.FeatureKey {
			continue
		}
		if sec.RoleKey == nil || *sec.RoleKey == key.RoleKey {
			inScope[sec.SectionID] = true
		}
	}

	out := make(map[string]*model.Field, len(fields))
	for i := range fields {
		if inScope[fields[i].SectionID] {
			out[fields[i].FieldID] = &fields[i]
		}
	}
	return out, nil
}

func (s *captureService) isActiveMember(ctx context.Context, role, name string) (bool, error) {
	_, err := s.repo.Member.FindActiveByName(ctx, role, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	s.logger.Error("查询成员失败", zap.String("role", role), zap.String("member", name), zap.Error(err))
	return false, pkgerrors.Store("member.find", err)
}

// checkValue 按字段类型校验取值，返回规范化后的分数与拒绝原因
func (s *captureService) checkValue(field *model.Field, value string, score *int) (*int, string) {
	if field.Kind == model.KindDescriptive {
		return nil, "说明类字段不接受取值"
	}

	switch {
	case field.Type == model.FieldScore:
		if score == nil {
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, "分数必须为整数"
			}
			score = &n
		}
		if *score < s.engine.ScoreMin || *score > s.engine.ScoreMax {
			return nil, "分数超出范围 " + strconv.Itoa(s.engine.ScoreMin) + "-" + strconv.Itoa(s.engine.ScoreMax)
		}
		return score, ""

	case model.IsNumericType(field.Type):
		if value == "" {
			return score, ""
		}
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, "取值必须为数字"
		}
		if field.Min != nil && n < *field.Min {
			return nil, "取值小于最小值"
		}
		if field.Max != nil && n > *field.Max {
			return nil, "取值大于最大值"
		}

	case field.Type == model.FieldRadio || field.Type == model.FieldSelect:
		if value != "" && !containsOption(field.Options, value) {
			return nil, "取值不在选项中: " + value
		}

	case field.Type == model.FieldCheckbox:
		for _, v := range strings.Split(value, ",") {
			v = strings.TrimSpace(v)
			if v != "" && !containsOption(field.Options, v) {
				return nil, "取值不在选项中: " + v
			}
		}
	}

	if score != nil && (*score < s.engine.ScoreMin || *score > s.engine.ScoreMax) {
		return nil, "分数超出范围 " + strconv.Itoa(s.engine.ScoreMin) + "-" + strconv.Itoa(s.engine.ScoreMax)
	}
	return score, ""
}

func containsOption(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
