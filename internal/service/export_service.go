package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gradebook/internal/catalog"
	"gradebook/internal/identity"
	"gradebook/internal/model"
	"gradebook/internal/policy"
	"gradebook/internal/store"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// 未填写评语时的占位文本
const noFeedbackText = "No feedback provided"

// ExportService 导出业务接口
//
// 导出内容与当前用户在列表中看到的成绩一致（同一可见性规则），
// 以 bytes.Buffer 返回，由 Handler 层设置响应头后写出。
type ExportService interface {
	// ExportGrades 导出可见成绩为 Excel (.xlsx)
	ExportGrades(ctx context.Context) (*bytes.Buffer, string, error)
}

type exportService struct {
	identity identity.Provider
	grades   *store.GradeStore
	catalog  *catalog.Catalog
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(provider identity.Provider, grades *store.GradeStore, cat *catalog.Catalog, logger *zap.Logger) ExportService {
	return &exportService{identity: provider, grades: grades, catalog: cat, logger: logger}
}

// ExportGrades 输出格式：
//   - Sheet "Notas"
//   - 第 1 行标题，第 2 行表头
//   - 列：学生 / 课程 / 分数 / 等级 / 评语 / 更新时间
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error
func (s *exportService) ExportGrades(ctx context.Context) (*bytes.Buffer, string, error) {
	user := s.identity.GetCurrentUser(ctx)
	if user == nil {
		return nil, "", ErrUnauthenticated
	}
	visible := policy.VisibleGrades(s.grades.Snapshot(), user)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Notas"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"Estudiante", "Ramo", "Puntaje (%)", "Nivel", "Feedback", "Fecha"}
	widths := []float64{12, 28, 12, 12, 40, 26}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheetName, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Notas de %s", user.Name))
	f.MergeCell(sheetName, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	// 数据行
	row = 3
	for _, g := range visible {
		feedback := noFeedbackText
		if g.Feedback != nil && *g.Feedback != "" {
			feedback = *g.Feedback
		}
		values := []interface{}{
			g.StudentID,
			s.catalog.CourseName(g.CourseID),
			g.Score,
			model.ScoreBand(g.Score),
			feedback,
			g.UpdatedAt,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("成绩导出完成", zap.String("user_id", user.ID), zap.Int("rows", len(visible)))
	return buf, fmt.Sprintf("notas_%s.xlsx", user.ID), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
