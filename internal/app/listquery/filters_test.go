package listquery

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"
)

func renderPred(t *testing.T, pred squirrel.Sqlizer) (string, []interface{}) {
	t.Helper()
	sql, args, err := pred.ToSql()
	if err != nil {
		t.Fatalf("rendering predicate: %v", err)
	}
	return sql, args
}

func TestIntColumn(t *testing.T) {
	build := IntColumn("s.class_id")

	sql, args := renderPred(t, build("12"))
	if !strings.Contains(sql, "s.class_id") || len(args) != 1 || args[0] != int64(12) {
		t.Errorf("got %s %v, want equality on s.class_id with 12", sql, args)
	}

	sql, _ = renderPred(t, build("12abc"))
	if sql != "1 = 0" {
		t.Errorf("malformed value rendered %q, want 1 = 0", sql)
	}
}

func TestEnumColumn(t *testing.T) {
	build := EnumColumn("l.day", "MONDAY", "TUESDAY")

	sql, args := renderPred(t, build("MONDAY"))
	if !strings.Contains(sql, "l.day") || args[0] != "MONDAY" {
		t.Errorf("got %s %v, want equality on l.day", sql, args)
	}

	// values outside the allow-list match nothing, case included
	for _, value := range []string{"monday", "SUNDAY", "MONDAY; DROP TABLE"} {
		sql, _ = renderPred(t, build(value))
		if sql != "1 = 0" {
			t.Errorf("build(%q) rendered %q, want 1 = 0", value, sql)
		}
	}
}

func TestBoolColumn(t *testing.T) {
	build := BoolColumn("at.present")

	sql, args := renderPred(t, build("true"))
	if !strings.Contains(sql, "at.present") || args[0] != true {
		t.Errorf("got %s %v, want equality on at.present", sql, args)
	}

	sql, _ = renderPred(t, build("yes please"))
	if sql != "1 = 0" {
		t.Errorf("malformed value rendered %q, want 1 = 0", sql)
	}
}

func TestDateColumn(t *testing.T) {
	build := DateColumn("at.date")

	sql, args := renderPred(t, build("2026-03-15"))
	if !strings.Contains(sql, "at.date::date") || args[0] != "2026-03-15" {
		t.Errorf("got %s %v, want day equality on at.date", sql, args)
	}

	sql, _ = renderPred(t, build("15/03/2026"))
	if sql != "1 = 0" {
		t.Errorf("malformed date rendered %q, want 1 = 0", sql)
	}
}
