package repositories

import (
	"strings"
	"testing"

	"github.com/Masterminds/squirrel"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
)

func renderSpecWhere(t *testing.T, spec listquery.Spec, params listquery.Params, viewer listquery.Viewer) (string, []interface{}) {
	t.Helper()
	q := spec.Build(params, viewer)
	sql, args, err := squirrel.Select("*").From("x").Where(q.Where).
		PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		t.Fatalf("rendering where clause: %v", err)
	}
	return sql, args
}

func TestStudentListSpecScopes(t *testing.T) {
	spec := StudentListSpec()

	tests := []struct {
		name   string
		viewer listquery.Viewer
		want   []string
	}{
		{
			name:   "admin is unscoped",
			viewer: listquery.Viewer{Role: models.RoleAdmin},
			want:   nil,
		},
		{
			name:   "teacher sees taught and supervised classes",
			viewer: listquery.Viewer{Role: models.RoleTeacher, PersonID: 4},
			want:   []string{"l.teacher_id", "sc.supervisor_id"},
		},
		{
			name:   "student sees classmates",
			viewer: listquery.Viewer{Role: models.RoleStudent, PersonID: 8},
			want:   []string{"s2.class_id"},
		},
		{
			name:   "parent sees own children",
			viewer: listquery.Viewer{Role: models.RoleParent, PersonID: 2},
			want:   []string{"s.parent_id"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _ := renderSpecWhere(t, spec, listquery.Params{}, tt.viewer)
			for _, fragment := range tt.want {
				if !strings.Contains(sql, fragment) {
					t.Errorf("sql = %s, missing %q", sql, fragment)
				}
			}
			if tt.want == nil && strings.Contains(sql, "WHERE") && !strings.Contains(sql, "(1=1)") {
				t.Errorf("sql = %s, want no scoping for admin", sql)
			}
		})
	}
}

func TestStudentListSpecTeacherFilter(t *testing.T) {
	spec := StudentListSpec()

	sql, args := renderSpecWhere(t, spec,
		listquery.Params{"teacherId": "7"}, listquery.Viewer{Role: models.RoleAdmin})
	if !strings.Contains(sql, "l.teacher_id") {
		t.Errorf("sql = %s, want lesson subquery for teacherId filter", sql)
	}
	if len(args) != 1 || args[0] != int64(7) {
		t.Errorf("args = %v, want [7]", args)
	}

	sql, _ = renderSpecWhere(t, spec,
		listquery.Params{"teacherId": "seven"}, listquery.Viewer{Role: models.RoleAdmin})
	if !strings.Contains(sql, "1 = 0") {
		t.Errorf("sql = %s, want deny-all for malformed teacherId", sql)
	}
}

func TestStudentListSpecSexFilterAllowList(t *testing.T) {
	spec := StudentListSpec()

	sql, _ := renderSpecWhere(t, spec,
		listquery.Params{"sex": "FEMALE"}, listquery.Viewer{Role: models.RoleAdmin})
	if !strings.Contains(sql, "s.sex") {
		t.Errorf("sql = %s, want sex equality", sql)
	}

	sql, _ = renderSpecWhere(t, spec,
		listquery.Params{"sex": "female'); DROP TABLE students;--"}, listquery.Viewer{Role: models.RoleAdmin})
	if !strings.Contains(sql, "1 = 0") {
		t.Errorf("sql = %s, want deny-all outside the allow-list", sql)
	}
}

func TestResultListSpecSortsTitleOverBothTargets(t *testing.T) {
	spec := ResultListSpec()

	q := spec.Build(listquery.Params{listquery.KeySortBy: "title"}, listquery.Viewer{Role: models.RoleAdmin})
	if len(q.OrderBy) == 0 || !strings.Contains(q.OrderBy[0], "COALESCE(e.title, a.title)") {
		t.Errorf("order = %v, want coalesced title expression first", q.OrderBy)
	}
}

func TestSpecDefaultOrders(t *testing.T) {
	admin := listquery.Viewer{Role: models.RoleAdmin}

	tests := []struct {
		name string
		spec listquery.Spec
		want []string
	}{
		{"exams nearest start first", ExamListSpec(), []string{"e.start_time ASC", "e.id ASC"}},
		{"assignments nearest due first", AssignmentListSpec(), []string{"a.due_date ASC", "a.id ASC"}},
		{"results newest first", ResultListSpec(), []string{"r.id DESC"}},
		{"lessons by school day then start", LessonListSpec(), []string{weekdayOrder + " ASC", "l.start_time ASC", "l.id ASC"}},
		{"events upcoming first", EventListSpec(), []string{"e.start_time ASC", "e.id ASC"}},
		{"announcements newest first", AnnouncementListSpec(), []string{"an.date DESC", "an.id ASC"}},
		{"attendance newest first", AttendanceListSpec(), []string{"at.date DESC", "at.id ASC"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.spec.Build(listquery.Params{}, admin)
			if len(q.OrderBy) != len(tt.want) {
				t.Fatalf("order = %v, want %v", q.OrderBy, tt.want)
			}
			for i := range tt.want {
				if q.OrderBy[i] != tt.want[i] {
					t.Errorf("order[%d] = %q, want %q", i, q.OrderBy[i], tt.want[i])
				}
			}
		})
	}
}

func TestLessonListSpecDayFilter(t *testing.T) {
	spec := LessonListSpec()

	sql, _ := renderSpecWhere(t, spec,
		listquery.Params{"day": "WEDNESDAY"}, listquery.Viewer{Role: models.RoleAdmin})
	if !strings.Contains(sql, "l.day") {
		t.Errorf("sql = %s, want day equality", sql)
	}

	sql, _ = renderSpecWhere(t, spec,
		listquery.Params{"day": "SATURDAY"}, listquery.Viewer{Role: models.RoleAdmin})
	if !strings.Contains(sql, "1 = 0") {
		t.Errorf("sql = %s, want deny-all for a non-school day", sql)
	}
}

func TestEventListSpecSchoolWideVisibility(t *testing.T) {
	spec := EventListSpec()

	sql, _ := renderSpecWhere(t, spec, listquery.Params{}, listquery.Viewer{Role: models.RoleStudent, PersonID: 3})
	if !strings.Contains(sql, "e.class_id IS NULL") {
		t.Errorf("sql = %s, want school-wide rows visible to students", sql)
	}
}

func TestClassListSpecStudentCountSort(t *testing.T) {
	spec := ClassListSpec()

	q := spec.Build(listquery.Params{
		listquery.KeySortBy:    "studentCount",
		listquery.KeySortOrder: "desc",
	}, listquery.Viewer{Role: models.RoleAdmin})
	if len(q.OrderBy) == 0 || q.OrderBy[0] != "student_count DESC" {
		t.Errorf("order = %v, want student_count DESC first", q.OrderBy)
	}
}
