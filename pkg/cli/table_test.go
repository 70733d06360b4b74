package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestTableEmptyProducesNoOutput(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "NAME", "STATE")
	table.Flush()

	if buf.Len() != 0 {
		t.Errorf("empty table wrote output: %q", buf.String())
	}
}

func TestTableHeadersAndRows(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "NAME", "STATE")
	table.Row("s1", "Draft")
	table.Row("s2", "StableOK")
	table.Flush()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (header, divider, 2 rows), got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], "NAME") || !strings.Contains(lines[0], "STATE") {
		t.Errorf("header line wrong: %q", lines[0])
	}
	if !strings.Contains(lines[1], "----") {
		t.Errorf("divider line wrong: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "s1") {
		t.Errorf("row line wrong: %q", lines[2])
	}
}

func TestTablePrefix(t *testing.T) {
	var buf bytes.Buffer
	table := NewTableTo(&buf, "COL").WithPrefix("  ")
	table.Row("v")
	table.Flush()

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		if !strings.HasPrefix(line, "  ") {
			t.Errorf("line missing prefix: %q", line)
		}
	}
}
