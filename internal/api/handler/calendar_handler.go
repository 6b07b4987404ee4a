package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"deisi-horarios/backend/config"
	"deisi-horarios/backend/internal/dto"
	"deisi-horarios/backend/internal/service"
	"deisi-horarios/backend/pkg/redis"
	"deisi-horarios/backend/pkg/response"
)

const contentTypeCalendar = "text/calendar; charset=utf-8"

// CalendarHandler 日历模块 HTTP 处理器
//
// Feed 路由的 Redis 缓存放在这一层：投影与序列化本身是纯函数，
// 缓存的只是对上游两次 HTTP 往返的结果
type CalendarHandler struct {
	calendarSvc service.CalendarService
	cfg         *config.Config
	rdb         *redis.Client
	logger      *zap.Logger
}

// NewCalendarHandler 创建 CalendarHandler
// rdb 可以为 nil：无 Redis 时每个请求直连上游
func NewCalendarHandler(calendarSvc service.CalendarService, cfg *config.Config, rdb *redis.Client, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{calendarSvc: calendarSvc, cfg: cfg, rdb: rdb, logger: logger}
}

// AlunoFeed 学生课表订阅 Feed
// GET /api/v1/calendar/aluno/:alunoId?ano=2025&sem=1&token=xxx
func (h *CalendarHandler) AlunoFeed(c *gin.Context) {
	numero, ok := h.numericParam(c, "alunoId")
	if !ok {
		return
	}
	if !h.checkToken(c) {
		return
	}
	ano, sem, ok := h.anoSem(c)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("aluno:%s:%d:%d", numero, ano, sem)
	if doc, hit := h.cachedFeed(c, cacheKey); hit {
		h.writeFeed(c, numero, doc)
		return
	}

	doc, err := h.calendarSvc.AlunoFeed(c.Request.Context(), numero, ano, sem)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	h.storeFeed(c, cacheKey, doc)
	h.writeFeed(c, numero, doc)
}

// AlunoDownload 学生课表一次性下载
// GET /api/v1/calendar/aluno/:alunoId/download?ano=2025&sem=1
func (h *CalendarHandler) AlunoDownload(c *gin.Context) {
	numero, ok := h.numericParam(c, "alunoId")
	if !ok {
		return
	}
	if !h.checkToken(c) {
		return
	}
	ano, sem, ok := h.anoSem(c)
	if !ok {
		return
	}

	doc, err := h.calendarSvc.AlunoDownload(c.Request.Context(), numero, ano, sem)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=horario-%s.ics", numero))
	c.Data(http.StatusOK, contentTypeCalendar, doc)
}

// Subscription 学生 Feed 的 webcal 订阅地址
// GET /api/v1/calendar/aluno/:alunoId/subscription?ano=2025&sem=1
func (h *CalendarHandler) Subscription(c *gin.Context) {
	numero, ok := h.numericParam(c, "alunoId")
	if !ok {
		return
	}
	ano, sem, ok := h.anoSem(c)
	if !ok {
		return
	}

	response.OK(c, dto.SubscriptionResponse{
		URL: h.calendarSvc.SubscriptionURL(numero, ano, sem),
	})
}

// DocenteFeed 教师课表订阅 Feed
// GET /api/v1/calendar/docente/:docenteId?ano=2025&sem=1
func (h *CalendarHandler) DocenteFeed(c *gin.Context) {
	idStr, ok := h.numericParam(c, "docenteId")
	if !ok {
		return
	}
	if !h.checkToken(c) {
		return
	}
	ano, sem, ok := h.anoSem(c)
	if !ok {
		return
	}
	docenteID, _ := strconv.Atoi(idStr)

	cacheKey := fmt.Sprintf("docente:%d:%d:%d", docenteID, ano, sem)
	if doc, hit := h.cachedFeed(c, cacheKey); hit {
		h.writeFeed(c, idStr, doc)
		return
	}

	doc, err := h.calendarSvc.DocenteFeed(c.Request.Context(), docenteID, ano, sem)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	h.storeFeed(c, cacheKey, doc)
	h.writeFeed(c, idStr, doc)
}

// TurmaFeed 班级课表订阅 Feed
// GET /api/v1/calendar/turma/:curso/:turma?ano=2025&sem=1
func (h *CalendarHandler) TurmaFeed(c *gin.Context) {
	curso := c.Param("curso")
	turma := c.Param("turma")
	if curso == "" || turma == "" {
		response.BadRequest(c, 12001, "curso 和 turma 不能为空")
		return
	}
	if !h.checkToken(c) {
		return
	}
	ano, sem, ok := h.anoSem(c)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("turma:%s:%s:%d:%d", curso, turma, ano, sem)
	if doc, hit := h.cachedFeed(c, cacheKey); hit {
		h.writeFeed(c, curso+"-"+turma, doc)
		return
	}

	doc, err := h.calendarSvc.TurmaFeed(c.Request.Context(), curso, turma, ano, sem)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}

	h.storeFeed(c, cacheKey, doc)
	h.writeFeed(c, curso+"-"+turma, doc)
}

// ── 参数解析与公共出口 ──

// numericParam 校验路径参数为纯数字 id
func (h *CalendarHandler) numericParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if _, err := strconv.Atoi(v); err != nil || v == "" {
		response.BadRequest(c, 12001, name+" 必须为数字")
		return "", false
	}
	return v, true
}

// checkToken 校验订阅口令；未配置口令时完全开放
func (h *CalendarHandler) checkToken(c *gin.Context) bool {
	want := h.cfg.Calendar.Token
	if want == "" {
		return true
	}
	if c.Query("token") != want {
		response.Unauthorized(c, 12002, "订阅口令无效")
		return false
	}
	return true
}

// anoSem 解析学年/学期查询参数，缺省取配置默认值。
// ano 缺省为 start_year - 1：上游接口按学年起始的日历年索引
// （2025/26 学年 → ano=2025），而 start_year 是第二学期开学所在年
func (h *CalendarHandler) anoSem(c *gin.Context) (int, int, bool) {
	ano := h.cfg.Semester.StartYear - 1
	sem := h.cfg.Semester.DefaultSemestre

	if v := c.Query("ano"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			response.BadRequest(c, 12001, "ano 必须为数字")
			return 0, 0, false
		}
		ano = n
	}
	if v := c.Query("sem"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 2 {
			response.BadRequest(c, 12001, "sem 必须为 1 或 2")
			return 0, 0, false
		}
		sem = n
	}
	return ano, sem, true
}

// writeFeed 输出订阅 Feed。Content-Disposition 用 inline：
// 浏览器直接展示，日历客户端照常订阅
func (h *CalendarHandler) writeFeed(c *gin.Context, name string, doc []byte) {
	maxAge := int(h.cfg.Calendar.FeedCacheTTL.Seconds())
	c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=horario-%s.ics", name))
	c.Data(http.StatusOK, contentTypeCalendar, doc)
}

func (h *CalendarHandler) cachedFeed(c *gin.Context, key string) ([]byte, bool) {
	if h.rdb == nil {
		return nil, false
	}
	doc, err := h.rdb.GetFeed(c.Request.Context(), key)
	if err != nil {
		h.logger.Warn("读取 Feed 缓存失败", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return doc, doc != nil
}

func (h *CalendarHandler) storeFeed(c *gin.Context, key string, doc []byte) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.SetFeed(c.Request.Context(), key, doc, h.cfg.Calendar.FeedCacheTTL); err != nil {
		h.logger.Warn("写入 Feed 缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCalAlunoNotFound):
		response.NotFound(c, 12101, "学生不存在")
	case errors.Is(err, service.ErrCalSemAulas):
		response.NotFound(c, 12102, "该时段没有匹配的排课")
	case errors.Is(err, service.ErrCalUpstream):
		response.BadGateway(c, 12103, "上游课表数据源不可用")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/calendar_handler.go
