package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

type state int

func (s state) String() string {
	if s == 1 {
		return "unlocked"
	}
	return "hidden"
}

type achievement struct {
	ID    string   `json:"achievementId"`
	State state    `json:"state"`
	Steps int      `json:"currentSteps"`
	Icon  string   `json:"iconUrl" table:"wide"`
	Tags  []string `json:"tags"`
	note  string
}

func render(t *testing.T, f *TableFormatter, data any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	return buf.String()
}

func TestTableFormatter_Slice(t *testing.T) {
	data := []achievement{
		{ID: "first_trade", State: 1, Steps: 0, Icon: "https://icons/1", Tags: []string{"a", "b"}},
		{ID: "ten_trades", Steps: 4},
	}

	out := render(t, &TableFormatter{}, data)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("output:\n%s", out)
	}
	for _, h := range []string{"ACHIEVEMENT_ID", "STATE", "CURRENT_STEPS", "TAGS"} {
		if !strings.Contains(lines[0], h) {
			t.Errorf("header %q missing: %s", h, lines[0])
		}
	}
	if strings.Contains(lines[0], "ICON") || strings.Contains(out, "note") {
		t.Errorf("narrow output shows hidden columns:\n%s", out)
	}
	if !strings.Contains(lines[1], "unlocked") || !strings.Contains(lines[1], "a,b") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "hidden") || !strings.Contains(lines[2], "-") {
		t.Errorf("row = %q", lines[2])
	}

	wide := render(t, &TableFormatter{Wide: true}, data)
	if !strings.Contains(wide, "ICON_URL") || !strings.Contains(wide, "https://icons/1") {
		t.Errorf("wide output:\n%s", wide)
	}
}

func TestTableFormatter_PointerSlice(t *testing.T) {
	data := []*achievement{{ID: "a"}, nil, {ID: "b"}}
	out := render(t, &TableFormatter{NoHeaders: true}, data)
	if got := strings.Count(out, "\n"); got != 2 {
		t.Errorf("rows = %d, output:\n%s", got, out)
	}
	if strings.Contains(out, "ACHIEVEMENT_ID") {
		t.Error("headers printed with NoHeaders")
	}
}

func TestTableFormatter_StructAndMap(t *testing.T) {
	out := render(t, &TableFormatter{}, &achievement{ID: "first_trade", State: 1})
	if !strings.HasPrefix(out, "FIELD") || !strings.Contains(out, "achievementId  first_trade") {
		t.Errorf("struct output:\n%s", out)
	}

	out = render(t, &TableFormatter{}, map[string]int64{"event_trade": 5, "event_login": 2})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "event_login") || !strings.HasPrefix(lines[2], "event_trade") {
		t.Errorf("map output not sorted by key:\n%s", out)
	}
}

func TestTableFormatter_Special(t *testing.T) {
	if out := render(t, &TableFormatter{}, nil); out != "" {
		t.Errorf("nil output = %q", out)
	}
	if out := render(t, &TableFormatter{}, []achievement{}); out == "" || !strings.Contains(out, "ACHIEVEMENT_ID") {
		t.Errorf("empty slice output = %q", out)
	}
	if out := render(t, &TableFormatter{}, []string{"x", "y"}); !strings.Contains(out, "VALUE") || !strings.Contains(out, "y") {
		t.Errorf("string slice output = %q", out)
	}
	if out := render(t, &TableFormatter{}, 42); strings.TrimSpace(out) != "42" {
		t.Errorf("scalar fallback = %q", out)
	}

	table := Table{Headers: []string{"NAME", "VALUE"}}
	table.AddRow("slot1", "12")
	out := render(t, &TableFormatter{}, table)
	if !strings.Contains(out, "NAME   VALUE") || !strings.Contains(out, "slot1  12") {
		t.Errorf("table output:\n%s", out)
	}
}

func TestFormatValue(t *testing.T) {
	var nilPtr *int
	n := 3
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"empty string", "", "-"},
		{"int", int64(-7), "-7"},
		{"uint", uint8(7), "7"},
		{"float", 0.15, "0.15"},
		{"bool", true, "true"},
		{"stringer", state(1), "unlocked"},
		{"nil pointer", nilPtr, ""},
		{"pointer", &n, "3"},
		{"zero time", time.Time{}, "-"},
		{"time", time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), "2026-01-02 03:04"},
		{"empty slice", []int{}, "-"},
		{"slice", []int{1, 2}, "[2 items]"},
		{"map", map[string]int{"a": 1}, "{1 keys}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatValue(reflect.ValueOf(tt.in)); got != tt.want {
				t.Errorf("formatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
	if got := formatValue(reflect.Value{}); got != "" {
		t.Errorf("invalid value = %q", got)
	}
}

func TestHeaderName(t *testing.T) {
	tests := map[string]string{
		"achievementId":    "ACHIEVEMENT_ID",
		"playedTimeMillis": "PLAYED_TIME_MILLIS",
		"email_verified":   "EMAIL_VERIFIED",
	}
	for in, want := range tests {
		if got := headerName(in); got != want {
			t.Errorf("headerName(%q) = %q, want %q", in, got, want)
		}
	}
}
