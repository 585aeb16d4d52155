package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Shift", "Intensity"}
	rows := [][]string{
		{"100.00", "5.0"},
		{"1001.40", "100.0"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Shift    Intensity" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "100.00         5.0" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "1001.40      100.0" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableTrimsTrailingPadding(t *testing.T) {
	lines := formatTable(nil, [][]string{{"a", "b"}, {"ccc", "dd"}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "a    b" {
		t.Fatalf("unexpected row line: %q", lines[0])
	}
	if lines[1] != "ccc  dd" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}
