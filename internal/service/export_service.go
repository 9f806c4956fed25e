package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/crizanp/crijan-blog-backend/internal/repository"
)

// ErrExportGenerateFail 生成 Excel 失败
var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置下载响应头后写入 Response。
type ExportService interface {
	// ExportSemester 将学期的科目与文章目录导出为 Excel
	ExportSemester(ctx context.Context, semesterName string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// exportHeaders 表头顺序与 ExportSemester 写入列一致
var exportHeaders = []string{"科目", "标题", "Slug", "词数", "创建时间", "更新时间"}

// ═══════════════════════════════════════════════════════════
// ExportSemester 导出学期目录
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行：标题 "<学期名> 科目与文章"（合并单元格）
//   - 第 2 行：表头
//   - 之后每篇文章一行；没有文章的科目占一行，文章列留空
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSemester(ctx context.Context, semesterName string) (*bytes.Buffer, string, error) {
	semester, err := s.repo.Semester.GetByName(ctx, semesterName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.String("name", semesterName), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "目录"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 20)
	f.SetColWidth(sheetName, "B", "B", 40)
	f.SetColWidth(sheetName, "C", "C", 32)
	f.SetColWidth(sheetName, "D", "D", 8)
	f.SetColWidth(sheetName, "E", "F", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	lastCol := colName(len(exportHeaders))
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 科目与文章", semester.Name))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	for i, h := range exportHeaders {
		f.SetCellValue(sheetName, cell(colName(i+1), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(lastCol, 2), headerStyle)

	// 数据行
	row := 3
	for _, sub := range semester.Subjects {
		if len(sub.Posts) == 0 {
			f.SetCellValue(sheetName, cell("A", row), sub.Name)
			row++
			continue
		}
		for _, p := range sub.Posts {
			f.SetCellValue(sheetName, cell("A", row), sub.Name)
			f.SetCellValue(sheetName, cell("B", row), p.Title)
			f.SetCellValue(sheetName, cell("C", row), p.Slug)
			f.SetCellValue(sheetName, cell("D", row), len(strings.Fields(p.Content)))
			f.SetCellValue(sheetName, cell("E", row), formatTime(p.CreatedAt))
			f.SetCellValue(sheetName, cell("F", row), formatTime(p.UpdatedAt))
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	base := Slugify(semester.Name)
	if base == "" {
		base = "semester"
	}
	return buf, base + ".xlsx", nil
}

// colName 列号（1 起）转列名
func colName(n int) string {
	name, _ := excelize.ColumnNumberToName(n)
	return name
}

// cell 拼接单元格坐标，如 cell("A", 3) → "A3"
func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
