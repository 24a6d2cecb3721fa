package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"astro-distribusi/backend/internal/dto"
	"astro-distribusi/backend/internal/model"
	"astro-distribusi/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSections   = errors.New("当天没有可见分组，无可导出内容")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 表单导出业务接口
type ExportService interface {
	// ExportForm 将当天可见表单及采集值导出为 Excel，每个分组一个工作表
	ExportForm(ctx context.Context, caller *Caller, q *dto.FormQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	form    FormService
	capture CaptureService
	member  MemberService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(form FormService, capture CaptureService, member MemberService, logger *zap.Logger) ExportService {
	return &exportService{form: form, capture: capture, member: member, logger: logger}
}

func (s *exportService) ExportForm(ctx context.Context, caller *Caller, q *dto.FormQuery) (*bytes.Buffer, string, error) {
	if err := requireElevated(caller); err != nil {
		return nil, "", err
	}

	// 1. 当天可见分组与字段
	visible, err := s.form.VisibleForm(ctx, caller, &dto.FormQuery{
		Feature:       q.Feature,
		Role:          q.Role,
		Date:          q.Date,
		Period:        q.Period,
		IncludeFields: true,
	})
	if err != nil {
		return nil, "", err
	}
	if visible.Meta.Role == "" {
		return nil, "", ErrRoleUnresolved
	}
	if len(visible.Sections) == 0 {
		return nil, "", ErrExportNoSections
	}
	role := visible.Meta.Role

	// 2. 采集值索引: field_id + member → record
	date, _ := time.Parse(dateLayout, visible.Meta.Date)
	form, err := s.capture.GetForm(ctx, repository.SubjectKey{
		FeatureKey: q.Feature,
		RoleKey:    role,
		FormDate:   date,
		Depo:       strings.TrimSpace(q.Depo),
	})
	if err != nil {
		return nil, "", err
	}
	values := make(map[valueKey]model.ValueRecord)
	if form != nil {
		records, err := s.capture.ListValues(ctx, form.FormID)
		if err != nil {
			return nil, "", err
		}
		for _, r := range records {
			values[valueKey{fieldID: r.FieldID, member: r.MemberKey}] = r
		}
	}

	// 3. 成员列；没有成员的角色导出单列
	members, err := s.member.List(ctx, caller, &dto.MemberListRequest{Role: role})
	if err != nil {
		return nil, "", err
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Name)
	}
	if len(names) == 0 {
		names = []string{""}
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	used := make(map[string]bool)
	for i, sec := range visible.Sections {
		sheet := sheetName(sec.Title, used)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			s.logger.Error("创建工作表失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		f.SetColWidth(sheet, "A", "A", 40)
		f.SetColWidth(sheet, "B", "B", 20)
		f.SetColWidth(sheet, "C", "C", 30)
		f.SetColWidth(sheet, "D", "D", 8)

		f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s (%s)", sec.Title, visible.Meta.Date, visible.Meta.DayName))
		f.MergeCell(sheet, "A1", "D1")
		f.SetCellStyle(sheet, "A1", "A1", headerStyle)

		header := []string{"字段", "成员", "取值", "分数"}
		for col, h := range header {
			c, _ := excelize.CoordinatesToCellName(col+1, 2)
			f.SetCellValue(sheet, c, h)
		}
		f.SetCellStyle(sheet, "A2", "D2", headerStyle)

		row := 3
		for _, field := range sec.Fields {
			if field.Kind == model.KindDescriptive {
				f.SetCellValue(sheet, cell("A", row), field.Label)
				row++
				continue
			}
			for _, name := range names {
				f.SetCellValue(sheet, cell("A", row), field.Label)
				f.SetCellValue(sheet, cell("B", row), name)
				value, score := "-", ""
				if r, ok := lookupValue(values, field.ID, name); ok {
					value = r.Value
					if r.Score != nil {
						score = strconv.Itoa(*r.Score)
					}
				}
				f.SetCellValue(sheet, cell("C", row), value)
				f.SetCellValue(sheet, cell("D", row), score)
				row++
			}
		}
	}
	// 删除默认 Sheet1（若有分组恰好同名则保留）
	if !used["Sheet1"] {
		f.DeleteSheet("Sheet1")
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s_%s_%s.xlsx", q.Feature, role, visible.Meta.Date)
	return buf, filename, nil
}

// lookupValue 成员列为空时读取不区分成员的采集值
func lookupValue(values map[valueKey]model.ValueRecord, fieldID, member string) (model.ValueRecord, bool) {
	r, ok := values[valueKey{fieldID: fieldID, member: member}]
	if !ok && member != "" {
		r, ok = values[valueKey{fieldID: fieldID}]
	}
	return r, ok
}

func cell(col string, row int) string {
	return col + strconv.Itoa(row)
}

// sheetName 工作表名最长 31 字符且不能包含 []:*?/\，重名时追加序号
func sheetName(title string, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return ' '
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Section"
	}
	name = truncateRunes(name, 31)

	candidate := name
	for n := 2; used[candidate]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(name, 31-len(suffix)) + suffix
	}
	used[candidate] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
