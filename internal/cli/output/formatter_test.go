package output

import (
	"bytes"
	"strings"
	"testing"
)

type slot struct {
	Filename    string `json:"filename"`
	PlayedTime  int64  `json:"playedTimeMillis"`
	Description string `json:"description" table:"wide"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON, false).(*JSONFormatter); !ok {
		t.Error("json format did not return a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML, false).(*YAMLFormatter); !ok {
		t.Error("yaml format did not return a YAMLFormatter")
	}
	tf, ok := NewFormatter("other", true).(*TableFormatter)
	if !ok || !tf.Wide {
		t.Errorf("unknown format = %#v, want a wide TableFormatter", tf)
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatJSON, false, slot{Filename: "slot1", PlayedTime: 1000}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `"filename": "slot1"`) || !strings.Contains(out, `"playedTimeMillis": 1000`) {
		t.Errorf("output = %s", out)
	}
}

func TestYAMLFormatter_UsesJSONNames(t *testing.T) {
	var buf bytes.Buffer
	data := []slot{
		{Filename: "slot1", PlayedTime: 1000, Description: "true"},
		{Filename: "slot2"},
	}
	if err := (&YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"- filename: slot1\n",
		"  playedTimeMillis: 1000\n",
		`  description: "true"` + "\n",
		"- filename: slot2\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "{") {
		t.Errorf("output uses flow style:\n%s", out)
	}
}

func TestYAMLFormatter_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).Format(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "null" {
		t.Errorf("output = %q", buf.String())
	}
}
