package utils

import (
	"errors"
	"strings"
	"testing"
)

type row map[string]interface{}

func TestSmartParse_StandardJSON(t *testing.T) {
	var rows []row
	out, err := SmartParse(`[{"symbol":"VALE3","price":61.2}]`, &rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["price"] != 61.2 {
		t.Errorf("unexpected rows: %v", rows)
	}
	if out != `[{"symbol":"VALE3","price":61.2}]` {
		t.Errorf("standard JSON should be returned unchanged, got %s", out)
	}
}

func TestSmartParse_RepairsTrailingComma(t *testing.T) {
	var rows []row
	if _, err := SmartParse(`[{"symbol": "PETR4", "price": 38.5,},]`, &rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0]["symbol"] != "PETR4" {
		t.Errorf("unexpected rows: %v", rows)
	}
}

func TestSmartParse_HJSON(t *testing.T) {
	input := `
# hand-written quote
{
  symbol: ITUB4
  price: 33.1
  sector: Financial Services
}`
	var r row
	if _, err := SmartParse(input, &r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r) == 0 {
		t.Error("expected a decoded row")
	}
}

func TestSmartParse_Errors(t *testing.T) {
	var r row
	if _, err := SmartParse("   ", &r); !errors.Is(err, ErrUnparseable) {
		t.Errorf("expected ErrUnparseable for blank input, got %v", err)
	}
	if _, err := SmartParse(`{"a":1}`, r); err == nil {
		t.Error("expected error for non-pointer target")
	}
}

func TestSmartParse_FailedAttemptLeavesTargetUntouched(t *testing.T) {
	var n struct{ Value int }
	n.Value = 7
	if _, err := SmartParse(`"just a string"`, &n); err == nil {
		t.Fatal("expected decode error, got nil")
	}
	if n.Value != 7 {
		t.Errorf("expected target untouched, got %d", n.Value)
	}
}

func TestParseHJSON(t *testing.T) {
	out, err := ParseHJSON("{\n  a: 1\n  b: text\n}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"a":1`) || !strings.Contains(out, `"b":"text"`) {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestMarkdownToHTML_Table(t *testing.T) {
	html, err := MarkdownToHTML("| Method | Fair value |\n|---|---|\n| DCF | 10.00 |\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(html, "<table>") || !strings.Contains(html, "<td>DCF</td>") {
		t.Errorf("expected rendered table, got %s", html)
	}
}

func TestEscapeCell(t *testing.T) {
	if got := EscapeCell("a|b\nc"); got != `a\|b c` {
		t.Errorf("unexpected escape: %q", got)
	}
}
