package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
)

func staticSource(entity string, hits []dto.SearchHit) searchSource {
	return searchSource{
		entity:  entity,
		allowed: anyViewer,
		lookup: func(context.Context, string, listquery.Viewer) ([]dto.SearchHit, error) {
			return hits, nil
		},
	}
}

func TestSearchShortQueryReturnsEmpty(t *testing.T) {
	looked := false
	svc := &SearchService{sources: []searchSource{{
		entity:  SearchTypeStudent,
		allowed: anyViewer,
		lookup: func(context.Context, string, listquery.Viewer) ([]dto.SearchHit, error) {
			looked = true
			return nil, nil
		},
	}}}

	for _, query := range []string{"", " ", "a", " a "} {
		resp := svc.Search(context.Background(), query, listquery.Viewer{Role: models.RoleAdmin})
		if len(resp.Results) != 0 {
			t.Errorf("Search(%q) returned %d results, want 0", query, len(resp.Results))
		}
		if resp.Results == nil {
			t.Errorf("Search(%q) results are nil, want empty slice", query)
		}
	}
	if looked {
		t.Error("lookup ran for a query below the minimum length")
	}
}

func TestSearchTrimsQuery(t *testing.T) {
	var got string
	svc := &SearchService{sources: []searchSource{{
		entity:  SearchTypeStudent,
		allowed: anyViewer,
		lookup: func(_ context.Context, q string, _ listquery.Viewer) ([]dto.SearchHit, error) {
			got = q
			return nil, nil
		},
	}}}

	resp := svc.Search(context.Background(), "  ali  ", listquery.Viewer{Role: models.RoleAdmin})
	if got != "ali" {
		t.Errorf("lookup received %q, want trimmed %q", got, "ali")
	}
	if resp.Query != "ali" {
		t.Errorf("response echoes %q, want %q", resp.Query, "ali")
	}
}

func TestSearchMergesAndRanks(t *testing.T) {
	svc := &SearchService{sources: []searchSource{
		staticSource(SearchTypeStudent, []dto.SearchHit{
			{ID: 1, Title: "Jonathan Lee", Type: SearchTypeStudent},
			{ID: 2, Title: "Dijon Mustard", Type: SearchTypeStudent},
		}),
		staticSource(SearchTypeTeacher, []dto.SearchHit{
			{ID: 3, Title: "Jon Park", Type: SearchTypeTeacher},
		}),
	}}

	resp := svc.Search(context.Background(), "jon", listquery.Viewer{Role: models.RoleAdmin})
	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}

	// prefix matches first, ordered by lowercased title, containment last
	wantTitles := []string{"Jon Park", "Jonathan Lee", "Dijon Mustard"}
	for i, want := range wantTitles {
		if resp.Results[i].Title != want {
			t.Errorf("result[%d] = %q, want %q", i, resp.Results[i].Title, want)
		}
	}
}

func TestSearchCapsMergedResults(t *testing.T) {
	var hits []dto.SearchHit
	for i := 0; i < searchMaxResults+20; i++ {
		hits = append(hits, dto.SearchHit{ID: int64(i), Title: fmt.Sprintf("Maths %03d", i), Type: SearchTypeLesson})
	}
	svc := &SearchService{sources: []searchSource{staticSource(SearchTypeLesson, hits)}}

	resp := svc.Search(context.Background(), "maths", listquery.Viewer{Role: models.RoleAdmin})
	if len(resp.Results) != searchMaxResults {
		t.Errorf("got %d results, want cap of %d", len(resp.Results), searchMaxResults)
	}
}

func TestSearchSkipsDisallowedSources(t *testing.T) {
	looked := false
	svc := &SearchService{sources: []searchSource{
		{
			entity:  SearchTypeParent,
			allowed: func(viewer listquery.Viewer) bool { return viewer.Role == models.RoleAdmin },
			lookup: func(context.Context, string, listquery.Viewer) ([]dto.SearchHit, error) {
				looked = true
				return []dto.SearchHit{{ID: 9, Title: "Jon Senior", Type: SearchTypeParent}}, nil
			},
		},
		staticSource(SearchTypeStudent, []dto.SearchHit{{ID: 1, Title: "Jon Junior", Type: SearchTypeStudent}}),
	}}

	resp := svc.Search(context.Background(), "jon", listquery.Viewer{Role: models.RoleTeacher, PersonID: 4})
	if looked {
		t.Error("disallowed source lookup still ran")
	}
	if len(resp.Results) != 1 || resp.Results[0].Type != SearchTypeStudent {
		t.Errorf("results = %v, want only the student hit", resp.Results)
	}
}

func TestSearchDegradesOnSourceFailure(t *testing.T) {
	svc := &SearchService{sources: []searchSource{
		{
			entity:  SearchTypeExam,
			allowed: anyViewer,
			lookup: func(context.Context, string, listquery.Viewer) ([]dto.SearchHit, error) {
				return nil, errors.New("connection reset")
			},
		},
		staticSource(SearchTypeClass, []dto.SearchHit{{ID: 5, Title: "5A", Type: SearchTypeClass}}),
	}}

	resp := svc.Search(context.Background(), "5a", listquery.Viewer{Role: models.RoleAdmin})
	if len(resp.Results) != 1 || resp.Results[0].Title != "5A" {
		t.Errorf("results = %v, want the surviving class hit", resp.Results)
	}
}

func TestRankHitsTotalOrder(t *testing.T) {
	// identical titles fall back to type, then id, so the order is total
	hits := []dto.SearchHit{
		{ID: 2, Title: "Maths", Type: SearchTypeSubject},
		{ID: 1, Title: "Maths", Type: SearchTypeLesson},
		{ID: 1, Title: "Maths", Type: SearchTypeSubject},
	}

	ranked := rankHits(hits, "maths")
	want := []struct {
		typ string
		id  int64
	}{
		{SearchTypeLesson, 1},
		{SearchTypeSubject, 1},
		{SearchTypeSubject, 2},
	}
	for i, w := range want {
		if ranked[i].Type != w.typ || ranked[i].ID != w.id {
			t.Errorf("ranked[%d] = %s/%d, want %s/%d", i, ranked[i].Type, ranked[i].ID, w.typ, w.id)
		}
	}
}

func TestRankHitsCaseInsensitivePrefix(t *testing.T) {
	hits := []dto.SearchHit{
		{ID: 1, Title: "ali Veli", Type: SearchTypeStudent},
		{ID: 2, Title: "ALIYE Can", Type: SearchTypeStudent},
		{ID: 3, Title: "Mehmet Ali", Type: SearchTypeStudent},
	}

	// both prefix matches rank ahead of the containment match, ordered by
	// their lowercased titles ("ali veli" sorts before "aliye can")
	ranked := rankHits(hits, "Ali")
	if ranked[0].ID != 1 || ranked[1].ID != 2 || ranked[2].ID != 3 {
		t.Errorf("ranked ids = [%d %d %d], want [1 2 3]", ranked[0].ID, ranked[1].ID, ranked[2].ID)
	}
}

func TestStudentHitSubtitle(t *testing.T) {
	student := models.Student{
		ID:      7,
		Name:    "Ayşe",
		Surname: "Yılmaz",
		Class:   &models.Class{Name: "5A"},
		Grade:   &models.Grade{Level: 5},
	}

	hit := studentHit(student)
	if hit.Subtitle != "Student • 5A • Grade 5" {
		t.Errorf("subtitle = %q", hit.Subtitle)
	}
	if hit.URL != "/students/7" {
		t.Errorf("url = %q, want /students/7", hit.URL)
	}
}

func TestEventHitSchoolWide(t *testing.T) {
	hit := eventHit(models.Event{ID: 3, Title: "Sports Day"})
	if hit.Subtitle != "Event • School-wide" {
		t.Errorf("subtitle = %q", hit.Subtitle)
	}
}
