package listquery

import (
	"net/url"
	"reflect"
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"

	"github.com/emre/schoolhub/internal/app/models"
)

func testSpec() Spec {
	return Spec{
		SearchColumns: []string{"s.name", "s.surname"},
		Filters: map[string]FilterFunc{
			"classId": IntColumn("s.class_id"),
		},
		Sorts: map[string]string{
			"name":     "s.name",
			"birthday": "s.birthday",
		},
		DefaultOrder: []string{"s.surname ASC", "s.name ASC"},
		TieBreak:     "s.id ASC",
		Scope: func(v Viewer) squirrel.Sqlizer {
			return squirrel.Eq{"s.class_id": v.PersonID}
		},
	}
}

func renderWhere(t *testing.T, where squirrel.And) (string, []interface{}) {
	t.Helper()
	sql, args, err := squirrel.Select("*").From("x").Where(where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		t.Fatalf("rendering where clause: %v", err)
	}
	return sql, args
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"0", 1},
		{"-3", 1},
		{"abc", 1},
		{"2", 2},
		{" 7 ", 7},
	}
	for _, tt := range tests {
		if got := ParsePage(tt.raw); got != tt.want {
			t.Errorf("ParsePage(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestParamsFromQuery(t *testing.T) {
	values := url.Values{}
	values.Add("search", "john")
	values.Add("page", "3")
	values.Add("page", "9") // duplicate keys keep the first value

	params := ParamsFromQuery(values)
	if params["search"] != "john" {
		t.Errorf("search = %q, want %q", params["search"], "john")
	}
	if params["page"] != "3" {
		t.Errorf("page = %q, want %q", params["page"], "3")
	}
}

func TestBuildDefaults(t *testing.T) {
	spec := testSpec()
	admin := Viewer{Role: models.RoleAdmin}

	q := spec.Build(Params{}, admin)

	if q.Page != 1 {
		t.Errorf("page = %d, want 1", q.Page)
	}
	if q.Offset != 0 || q.Limit != PageSize {
		t.Errorf("window = (%d, %d), want (0, %d)", q.Offset, q.Limit, PageSize)
	}
	wantOrder := []string{"s.surname ASC", "s.name ASC", "s.id ASC"}
	if !reflect.DeepEqual(q.OrderBy, wantOrder) {
		t.Errorf("order = %v, want %v", q.OrderBy, wantOrder)
	}
	if len(q.Where) != 0 {
		t.Errorf("admin where = %v, want empty", q.Where)
	}
}

func TestBuildPageWindow(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{KeyPage: "3"}, Viewer{Role: models.RoleAdmin})

	if q.Page != 3 {
		t.Errorf("page = %d, want 3", q.Page)
	}
	if q.Offset != 2*PageSize {
		t.Errorf("offset = %d, want %d", q.Offset, 2*PageSize)
	}
}

func TestBuildSizedWindow(t *testing.T) {
	spec := testSpec()
	q := spec.BuildSized(Params{KeyPage: "2"}, Viewer{Role: models.RoleAdmin}, 500)

	if q.Offset != 500 || q.Limit != 500 {
		t.Errorf("window = (%d, %d), want (500, 500)", q.Offset, q.Limit)
	}

	// a non-positive size falls back to the shared page size
	q = spec.BuildSized(Params{}, Viewer{Role: models.RoleAdmin}, 0)
	if q.Limit != PageSize {
		t.Errorf("limit = %d, want %d", q.Limit, PageSize)
	}
}

func TestBuildSearchPredicate(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{KeySearch: "ali"}, Viewer{Role: models.RoleAdmin})

	sql, args := renderWhere(t, q.Where)
	if !strings.Contains(sql, "s.name ILIKE ?") && !strings.Contains(sql, "s.name ILIKE $1") {
		t.Errorf("search sql missing ILIKE on s.name: %s", sql)
	}
	if len(args) != 2 {
		t.Fatalf("args = %v, want two containment patterns", args)
	}
	for _, arg := range args {
		if arg != "%ali%" {
			t.Errorf("arg = %v, want %%ali%%", arg)
		}
	}
}

func TestBuildBlankSearchIgnored(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{KeySearch: "   "}, Viewer{Role: models.RoleAdmin})
	if len(q.Where) != 0 {
		t.Errorf("where = %v, want empty for blank search", q.Where)
	}
}

func TestBuildFilterSentinelAll(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{"classId": SentinelAll}, Viewer{Role: models.RoleAdmin})
	if len(q.Where) != 0 {
		t.Errorf("where = %v, want empty when filter value is %q", q.Where, SentinelAll)
	}
}

func TestBuildMalformedFilterMatchesNone(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{"classId": "banana"}, Viewer{Role: models.RoleAdmin})

	sql, _ := renderWhere(t, q.Where)
	if !strings.Contains(sql, "1 = 0") {
		t.Errorf("sql = %s, want always-false predicate for malformed filter", sql)
	}
}

func TestBuildUnknownFilterKeyIgnored(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{"nonsense": "4"}, Viewer{Role: models.RoleAdmin})
	if len(q.Where) != 0 {
		t.Errorf("where = %v, want unknown keys dropped", q.Where)
	}
}

func TestBuildSortAllowList(t *testing.T) {
	spec := testSpec()

	q := spec.Build(Params{KeySortBy: "name", KeySortOrder: "desc"}, Viewer{Role: models.RoleAdmin})
	wantOrder := []string{"s.name DESC", "s.id ASC"}
	if !reflect.DeepEqual(q.OrderBy, wantOrder) {
		t.Errorf("order = %v, want %v", q.OrderBy, wantOrder)
	}

	// an unlisted sort key falls back to the default order
	q = spec.Build(Params{KeySortBy: "password"}, Viewer{Role: models.RoleAdmin})
	wantOrder = []string{"s.surname ASC", "s.name ASC", "s.id ASC"}
	if !reflect.DeepEqual(q.OrderBy, wantOrder) {
		t.Errorf("order = %v, want default %v", q.OrderBy, wantOrder)
	}

	// any direction other than desc normalizes to ASC
	q = spec.Build(Params{KeySortBy: "birthday", KeySortOrder: "sideways"}, Viewer{Role: models.RoleAdmin})
	if q.OrderBy[0] != "s.birthday ASC" {
		t.Errorf("order = %v, want s.birthday ASC first", q.OrderBy)
	}
}

func TestScopeAppliedForNonAdmin(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{}, Viewer{Role: models.RoleStudent, PersonID: 42})

	sql, args := renderWhere(t, q.Where)
	if !strings.Contains(sql, "s.class_id") {
		t.Errorf("sql = %s, want scope on s.class_id", sql)
	}
	if len(args) != 1 || args[0] != int64(42) {
		t.Errorf("args = %v, want [42]", args)
	}
}

func TestScopeDeniesUnknownRole(t *testing.T) {
	spec := testSpec()
	q := spec.Build(Params{}, Viewer{Role: "SUPERUSER"})

	sql, _ := renderWhere(t, q.Where)
	if !strings.Contains(sql, "1 = 0") {
		t.Errorf("sql = %s, want deny-all for unknown role", sql)
	}
}

func TestScopeDeniesWhenSpecHasNoScope(t *testing.T) {
	spec := testSpec()
	spec.Scope = nil
	q := spec.Build(Params{}, Viewer{Role: models.RoleTeacher, PersonID: 7})

	sql, _ := renderWhere(t, q.Where)
	if !strings.Contains(sql, "1 = 0") {
		t.Errorf("sql = %s, want deny-all when no scope is declared", sql)
	}
}

func TestScopeCannotBeWidenedByParams(t *testing.T) {
	spec := testSpec()
	params := Params{"classId": "999", KeySearch: "everyone"}
	q := spec.Build(params, Viewer{Role: models.RoleStudent, PersonID: 5})

	sql, _ := renderWhere(t, q.Where)
	// scope predicate must still be present alongside the user filters
	if !strings.Contains(sql, "s.class_id") {
		t.Errorf("sql = %s, scope predicate missing", sql)
	}
	if !strings.Contains(sql, "AND") {
		t.Errorf("sql = %s, want filters ANDed with scope", sql)
	}
}

func TestSearchWhere(t *testing.T) {
	spec := testSpec()
	where := spec.SearchWhere("ay", Viewer{Role: models.RoleAdmin})

	sql, args := renderWhere(t, where)
	if !strings.Contains(sql, "ILIKE") {
		t.Errorf("sql = %s, want containment predicate", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v, want two patterns", args)
	}

	// empty query keeps only the scope
	where = spec.SearchWhere("  ", Viewer{Role: models.RoleStudent, PersonID: 3})
	sql, _ = renderWhere(t, where)
	if strings.Contains(sql, "ILIKE") {
		t.Errorf("sql = %s, want no containment for blank query", sql)
	}
	if !strings.Contains(sql, "s.class_id") {
		t.Errorf("sql = %s, want scope retained", sql)
	}
}

func TestEmptyWhereRendersValidSQL(t *testing.T) {
	// squirrel renders an empty And as a constant-true predicate, which the
	// repositories rely on when feeding q.Where into count statements
	sql, _, err := squirrel.Select("COUNT(*)").From("x").Where(squirrel.And{}).ToSql()
	if err != nil {
		t.Fatalf("empty And did not render: %v", err)
	}
	if !strings.Contains(sql, "(1=1)") {
		t.Errorf("sql = %s, want constant-true placeholder", sql)
	}
}
