package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	t.Parallel()
	in := "\n\tSELECT id\n\t  FROM access_requests\n\t WHERE id = $1\n"
	if got := Compact(in); got != "SELECT id FROM access_requests WHERE id = $1" {
		t.Fatalf("Compact = %q", got)
	}
}

func TestTracerLevels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	// an info root must not hide traced statements
	tr := Tracer(zerolog.New(&buf).Level(zerolog.InfoLevel))

	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT 1", ElapsedUS: 1500})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "SELECT pg_sleep(1)", Slow: true})
	tr.OnQuery(context.Background(), QueryEvent{SQL: "INSERT", Args: []any{1, 2}, Err: errors.New("duplicate")})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %s", len(lines), buf.String())
	}
	want := []string{"debug", "warn", "error"}
	for i, l := range lines {
		var ev map[string]any
		if err := json.Unmarshal([]byte(l), &ev); err != nil {
			t.Fatal(err)
		}
		if ev["level"] != want[i] || ev["component"] != "pg" {
			t.Fatalf("line %d = %v", i, ev)
		}
	}
	if !strings.Contains(lines[0], `"elapsed_ms":1.5`) || !strings.Contains(lines[2], `"args":2`) {
		t.Fatalf("fields missing: %s", buf.String())
	}
}
