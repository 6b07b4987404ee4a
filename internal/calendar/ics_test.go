package calendar

import (
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
)

func feedOptions() DocumentOptions {
	return DocumentOptions{
		ProdID:   "-//Horario Aluno DEISI//PT",
		Timezone: "Europe/Lisbon",
		Feed:     true,
		CalName:  "Horário 22000000",
	}
}

func testEvent() Event {
	return Event{
		UID:             "aula-123@deisi.pt",
		Start:           DateTime{2026, 2, 9, 9, 0},
		End:             DateTime{2026, 2, 9, 11, 0},
		Title:           "Programação (T)",
		Location:        "F.1.2",
		Description:     "Docente: Ana Silva\nCurso(s)/Turma(s): LEI - T1",
		RecurrenceCount: 18,
		ExceptionDates:  []DateTime{{2026, 3, 30, 9, 0}, {2026, 4, 6, 9, 0}},
	}
}

// ── 订阅源变体 ──

func TestSerialize_FeedVariant(t *testing.T) {
	doc := Serialize([]Event{testEvent()}, feedOptions())

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//Horario Aluno DEISI//PT",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"X-WR-TIMEZONE:Europe/Lisbon",
		"UID:aula-123@deisi.pt",
		"DTSTART;TZID=Europe/Lisbon:20260209T090000",
		"DTEND;TZID=Europe/Lisbon:20260209T110000",
		"RRULE:FREQ=WEEKLY;COUNT=18",
		"EXDATE;TZID=Europe/Lisbon:20260330T090000",
		"EXDATE;TZID=Europe/Lisbon:20260406T090000",
		"LOCATION:F.1.2",
		"END:VEVENT",
		"END:VCALENDAR",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("文档缺少 %q\n%s", want, doc)
		}
	}
}

// ── 下载变体 ──

func TestSerialize_DownloadVariant(t *testing.T) {
	opts := feedOptions()
	opts.Feed = false

	doc := Serialize([]Event{testEvent()}, opts)

	if !strings.Contains(doc, "VERSION:2.0") || !strings.Contains(doc, "PRODID:") {
		t.Error("下载变体仍需 VERSION 与 PRODID")
	}
	for _, forbidden := range []string{"METHOD:", "CALSCALE:", "X-WR-CALNAME", "X-WR-TIMEZONE"} {
		if strings.Contains(doc, forbidden) {
			t.Errorf("下载变体不应包含 %q", forbidden)
		}
	}
}

// ── 地点抑制 ──

func TestSerialize_LocationOmitted(t *testing.T) {
	ev := testEvent()
	ev.Location = ""

	doc := Serialize([]Event{ev}, feedOptions())
	if strings.Contains(doc, "LOCATION") {
		t.Error("地点缺省时不应输出 LOCATION 属性")
	}
}

// ── 确定性 ──

func TestSerialize_Deterministic(t *testing.T) {
	events := []Event{testEvent()}

	if Serialize(events, feedOptions()) != Serialize(events, feedOptions()) {
		t.Error("相同输入两次序列化应逐字节相同")
	}
}

// ── 回读校验 ──
//
// 序列化产物必须能被同一个库重新解析，事件数与 EXDATE 数不丢失

func TestSerialize_RoundTrip(t *testing.T) {
	doc := Serialize([]Event{testEvent()}, feedOptions())

	cal, err := ics.ParseCalendar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("序列化产物解析失败: %v", err)
	}

	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("期望 1 个事件，实际 %d", len(events))
	}

	exdates := 0
	for _, prop := range events[0].Properties {
		if prop.IANAToken == string(ics.ComponentPropertyExdate) {
			exdates++
		}
	}
	if exdates != 2 {
		t.Errorf("期望 2 条 EXDATE，实际 %d", exdates)
	}

	rrule := events[0].GetProperty(ics.ComponentPropertyRrule)
	if rrule == nil || rrule.Value != "FREQ=WEEKLY;COUNT=18" {
		t.Errorf("RRULE 不符: %+v", rrule)
	}
}
