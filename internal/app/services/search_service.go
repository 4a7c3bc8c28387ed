package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/app/models"
	"github.com/emre/schoolhub/internal/app/models/dto"
	"github.com/emre/schoolhub/internal/app/repositories"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

const (
	// searchMinRunes is the minimum query length before any lookup runs
	searchMinRunes = 2
	// searchPerTypeLimit bounds each entity lookup
	searchPerTypeLimit = 8
	// searchMaxResults caps the merged result list
	searchMaxResults = 30
)

// Result type tags exposed in the search payload
const (
	SearchTypeStudent      = "student"
	SearchTypeTeacher      = "teacher"
	SearchTypeParent       = "parent"
	SearchTypeClass        = "class"
	SearchTypeSubject      = "subject"
	SearchTypeLesson       = "lesson"
	SearchTypeExam         = "exam"
	SearchTypeEvent        = "event"
	SearchTypeAnnouncement = "announcement"
)

// searchSource is one entity lookup in the fan-out. allowed gates whole
// types by caller role before any query runs.
type searchSource struct {
	entity  string
	allowed func(viewer listquery.Viewer) bool
	lookup  func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error)
}

func anyViewer(listquery.Viewer) bool { return true }

// SearchService answers the aggregate search endpoint by fanning out over
// every searchable entity and merging the hits into one ranked list.
type SearchService struct {
	sources []searchSource
}

// NewSearchService creates a SearchService over the full repository set
func NewSearchService(repos *repositories.Repositories) *SearchService {
	return &SearchService{sources: []searchSource{
		{
			entity:  SearchTypeStudent,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				students, err := repos.StudentRepository.Search(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(students))
				for _, student := range students {
					hits = append(hits, studentHit(student))
				}
				return hits, nil
			},
		},
		{
			entity: SearchTypeTeacher,
			// parents never see staff in search results
			allowed: func(viewer listquery.Viewer) bool { return viewer.Role != models.RoleParent },
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				teachers, err := repos.TeacherRepository.Search(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(teachers))
				for _, teacher := range teachers {
					hits = append(hits, teacherHit(teacher))
				}
				return hits, nil
			},
		},
		{
			entity: SearchTypeParent,
			// guardian contact data stays off non-admin search results
			allowed: func(viewer listquery.Viewer) bool { return viewer.Role == models.RoleAdmin },
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				parents, err := repos.ParentRepository.Search(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(parents))
				for _, parent := range parents {
					hits = append(hits, parentHit(parent))
				}
				return hits, nil
			},
		},
		{
			entity:  SearchTypeClass,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				classes, err := repos.ClassRepository.Search(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(classes))
				for _, class := range classes {
					hits = append(hits, classHit(class))
				}
				return hits, nil
			},
		},
		{
			entity:  SearchTypeSubject,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				subjects, err := repos.LessonRepository.SearchSubjects(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(subjects))
				for _, subject := range subjects {
					hits = append(hits, subjectHit(subject))
				}
				return hits, nil
			},
		},
		{
			entity:  SearchTypeLesson,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				lessons, err := repos.LessonRepository.SearchLessons(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(lessons))
				for _, lesson := range lessons {
					hits = append(hits, lessonHit(lesson))
				}
				return hits, nil
			},
		},
		{
			entity:  SearchTypeExam,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				exams, err := repos.AssessmentRepository.SearchExams(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(exams))
				for _, exam := range exams {
					hits = append(hits, examHit(exam))
				}
				return hits, nil
			},
		},
		{
			entity:  SearchTypeEvent,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				events, err := repos.BulletinRepository.SearchEvents(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(events))
				for _, event := range events {
					hits = append(hits, eventHit(event))
				}
				return hits, nil
			},
		},
		{
			entity:  SearchTypeAnnouncement,
			allowed: anyViewer,
			lookup: func(ctx context.Context, q string, viewer listquery.Viewer) ([]dto.SearchHit, error) {
				announcements, err := repos.BulletinRepository.SearchAnnouncements(ctx, q, viewer, searchPerTypeLimit)
				if err != nil {
					return nil, err
				}
				hits := make([]dto.SearchHit, 0, len(announcements))
				for _, announcement := range announcements {
					hits = append(hits, announcementHit(announcement))
				}
				return hits, nil
			},
		},
	}}
}

// Search fans out the query across every entity the viewer may see and
// merges the hits into one ranked list. A failing lookup degrades to a
// partial result; it never fails the whole request.
func (s *SearchService) Search(ctx context.Context, query string, viewer listquery.Viewer) dto.SearchResponse {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < searchMinRunes {
		return dto.SearchResponse{Results: []dto.SearchHit{}, Query: query}
	}

	perSource := make([][]dto.SearchHit, len(s.sources))
	var wg sync.WaitGroup
	for i, source := range s.sources {
		if !source.allowed(viewer) {
			continue
		}
		wg.Add(1)
		go func(i int, source searchSource) {
			defer wg.Done()
			hits, err := source.lookup(ctx, query, viewer)
			if err != nil {
				logger.Warn().Err(err).Str("entity", source.entity).Msg("Search lookup failed")
				return
			}
			perSource[i] = hits
		}(i, source)
	}
	wg.Wait()

	var merged []dto.SearchHit
	for _, hits := range perSource {
		merged = append(merged, hits...)
	}

	merged = rankHits(merged, query)
	if len(merged) > searchMaxResults {
		merged = merged[:searchMaxResults]
	}
	if merged == nil {
		merged = []dto.SearchHit{}
	}
	return dto.SearchResponse{Results: merged, Query: query}
}

// rankHits orders hits so title-prefix matches come before mere containment
// matches, breaking ties lexicographically by lowercased title. The order is
// total, so equal inputs always render the same list.
func rankHits(hits []dto.SearchHit, query string) []dto.SearchHit {
	q := strings.ToLower(query)
	sort.SliceStable(hits, func(i, j int) bool {
		ti, tj := strings.ToLower(hits[i].Title), strings.ToLower(hits[j].Title)
		pi, pj := strings.HasPrefix(ti, q), strings.HasPrefix(tj, q)
		if pi != pj {
			return pi
		}
		if ti != tj {
			return ti < tj
		}
		if hits[i].Type != hits[j].Type {
			return hits[i].Type < hits[j].Type
		}
		return hits[i].ID < hits[j].ID
	})
	return hits
}

// ----- hit shaping -----

func studentHit(student models.Student) dto.SearchHit {
	subtitle := "Student"
	if student.Class != nil {
		subtitle += " • " + student.Class.Name
	}
	if student.Grade != nil {
		subtitle += fmt.Sprintf(" • Grade %d", student.Grade.Level)
	}
	return dto.SearchHit{
		ID:       student.ID,
		Title:    student.Name + " " + student.Surname,
		Subtitle: subtitle,
		Type:     SearchTypeStudent,
		URL:      fmt.Sprintf("/students/%d", student.ID),
		Avatar:   derefStr(student.Img),
	}
}

func teacherHit(teacher models.Teacher) dto.SearchHit {
	subtitle := "Teacher"
	if len(teacher.Subjects) > 0 {
		names := make([]string, 0, len(teacher.Subjects))
		for _, subject := range teacher.Subjects {
			names = append(names, subject.Name)
		}
		subtitle += " • " + strings.Join(names, ", ")
	}
	return dto.SearchHit{
		ID:       teacher.ID,
		Title:    teacher.Name + " " + teacher.Surname,
		Subtitle: subtitle,
		Type:     SearchTypeTeacher,
		URL:      fmt.Sprintf("/teachers/%d", teacher.ID),
		Avatar:   derefStr(teacher.Img),
	}
}

func parentHit(parent models.Parent) dto.SearchHit {
	return dto.SearchHit{
		ID:       parent.ID,
		Title:    parent.Name + " " + parent.Surname,
		Subtitle: "Parent • " + parent.Phone,
		Type:     SearchTypeParent,
		URL:      fmt.Sprintf("/parents/%d", parent.ID),
	}
}

func classHit(class models.Class) dto.SearchHit {
	subtitle := "Class"
	if class.Grade != nil {
		subtitle += fmt.Sprintf(" • Grade %d", class.Grade.Level)
	}
	return dto.SearchHit{
		ID:       class.ID,
		Title:    class.Name,
		Subtitle: subtitle,
		Type:     SearchTypeClass,
		URL:      fmt.Sprintf("/classes/%d", class.ID),
	}
}

func subjectHit(subject models.Subject) dto.SearchHit {
	return dto.SearchHit{
		ID:       subject.ID,
		Title:    subject.Name,
		Subtitle: "Subject",
		Type:     SearchTypeSubject,
		URL:      fmt.Sprintf("/subjects/%d", subject.ID),
	}
}

func lessonHit(lesson models.Lesson) dto.SearchHit {
	subtitle := "Lesson"
	if lesson.Subject != nil {
		subtitle += " • " + lesson.Subject.Name
	}
	if lesson.Class != nil {
		subtitle += " • " + lesson.Class.Name
	}
	return dto.SearchHit{
		ID:       lesson.ID,
		Title:    lesson.Name,
		Subtitle: subtitle,
		Type:     SearchTypeLesson,
		URL:      fmt.Sprintf("/lessons/%d", lesson.ID),
	}
}

func examHit(exam models.Exam) dto.SearchHit {
	subtitle := "Exam"
	if exam.Lesson != nil && exam.Lesson.Subject != nil {
		subtitle += " • " + exam.Lesson.Subject.Name
	}
	if exam.Lesson != nil && exam.Lesson.Class != nil {
		subtitle += " • " + exam.Lesson.Class.Name
	}
	return dto.SearchHit{
		ID:       exam.ID,
		Title:    exam.Title,
		Subtitle: subtitle,
		Type:     SearchTypeExam,
		URL:      fmt.Sprintf("/exams/%d", exam.ID),
	}
}

func eventHit(event models.Event) dto.SearchHit {
	subtitle := "Event"
	if event.Class != nil {
		subtitle += " • " + event.Class.Name
	} else {
		subtitle += " • School-wide"
	}
	return dto.SearchHit{
		ID:       event.ID,
		Title:    event.Title,
		Subtitle: subtitle,
		Type:     SearchTypeEvent,
		URL:      fmt.Sprintf("/events/%d", event.ID),
	}
}

func announcementHit(announcement models.Announcement) dto.SearchHit {
	subtitle := "Announcement"
	if announcement.Class != nil {
		subtitle += " • " + announcement.Class.Name
	} else {
		subtitle += " • School-wide"
	}
	return dto.SearchHit{
		ID:       announcement.ID,
		Title:    announcement.Title,
		Subtitle: subtitle,
		Type:     SearchTypeAnnouncement,
		URL:      fmt.Sprintf("/announcements/%d", announcement.ID),
	}
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
