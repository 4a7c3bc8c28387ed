package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/emre/schoolhub/internal/app/listquery"
	"github.com/emre/schoolhub/internal/pkg/helpers"
	"github.com/emre/schoolhub/internal/pkg/logger"
)

// ExportService renders filtered lists as xlsx workbooks. Exports walk the
// same scoped queries as the list endpoints, so a caller can never export
// rows it cannot list.
type ExportService struct {
	assessmentService *AssessmentService
	attendanceService *AttendanceService
}

// NewExportService creates a new ExportService
func NewExportService(assessmentService *AssessmentService, attendanceService *AttendanceService) *ExportService {
	return &ExportService{
		assessmentService: assessmentService,
		attendanceService: attendanceService,
	}
}

// ResultsWorkbook exports the results matching params as an xlsx workbook
func (s *ExportService) ResultsWorkbook(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]byte, string, error) {
	params = copyParams(params)
	file := excelize.NewFile()
	sheet := "Results"
	if err := renameDefaultSheet(file, sheet); err != nil {
		return nil, "", err
	}

	header := []interface{}{"ID", "Student", "Title", "Score"}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	for page := 1; ; page++ {
		params[listquery.KeyPage] = strconv.Itoa(page)
		results, total, err := s.assessmentService.ListResultsSized(ctx, params, viewer, helpers.MaxPageSize)
		if err != nil {
			return nil, "", err
		}

		for _, result := range results {
			student := ""
			if result.Student != nil {
				student = result.Student.Name + " " + result.Student.Surname
			}
			cells := []interface{}{result.ID, student, result.Title, result.Score}
			if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, "", fmt.Errorf("failed to write result row: %w", err)
			}
			row++
		}

		if page*helpers.MaxPageSize >= total || len(results) == 0 {
			break
		}
	}

	data, err := writeWorkbook(file)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("results-%s.xlsx", time.Now().Format("2006-01-02"))
	logger.Info().Int("rows", row-2).Str("file", name).Msg("Results export generated")
	return data, name, nil
}

// AttendanceWorkbook exports the attendance records matching params as an
// xlsx workbook
func (s *ExportService) AttendanceWorkbook(ctx context.Context, params listquery.Params, viewer listquery.Viewer) ([]byte, string, error) {
	params = copyParams(params)
	file := excelize.NewFile()
	sheet := "Attendance"
	if err := renameDefaultSheet(file, sheet); err != nil {
		return nil, "", err
	}

	header := []interface{}{"ID", "Date", "Student", "Lesson", "Present"}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("failed to write header row: %w", err)
	}

	row := 2
	for page := 1; ; page++ {
		params[listquery.KeyPage] = strconv.Itoa(page)
		records, total, err := s.attendanceService.ListSized(ctx, params, viewer, helpers.MaxPageSize)
		if err != nil {
			return nil, "", err
		}

		for _, record := range records {
			student, lesson := "", ""
			if record.Student != nil {
				student = record.Student.Name + " " + record.Student.Surname
			}
			if record.Lesson != nil {
				lesson = record.Lesson.Name
			}
			cells := []interface{}{
				record.ID,
				record.Date.Format("2006-01-02"),
				student,
				lesson,
				record.Present,
			}
			if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &cells); err != nil {
				return nil, "", fmt.Errorf("failed to write attendance row: %w", err)
			}
			row++
		}

		if page*helpers.MaxPageSize >= total || len(records) == 0 {
			break
		}
	}

	data, err := writeWorkbook(file)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("attendance-%s.xlsx", time.Now().Format("2006-01-02"))
	logger.Info().Int("rows", row-2).Str("file", name).Msg("Attendance export generated")
	return data, name, nil
}

// copyParams clones the request parameters so page stepping never mutates
// the caller's map
func copyParams(params listquery.Params) listquery.Params {
	out := make(listquery.Params, len(params)+1)
	for key, value := range params {
		out[key] = value
	}
	return out
}

func renameDefaultSheet(file *excelize.File, name string) error {
	if err := file.SetSheetName(file.GetSheetName(0), name); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	return nil
}

func writeWorkbook(file *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close workbook: %w", err)
	}
	return buf.Bytes(), nil
}
