package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/noah-isme/course-backoffice-api/internal/models"
	appErrors "github.com/noah-isme/course-backoffice-api/pkg/errors"
	"github.com/noah-isme/course-backoffice-api/pkg/export"
)

// Export formats supported for distribution snapshots.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportService renders stored distribution snapshots into downloadable
// documents.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewExportService constructs an ExportService.
func NewExportService() *ExportService {
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// ExportFile is a rendered document ready to be served.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// RenderDistribution flattens a snapshot into one row per homework and
// renders it in the requested format.
func (s *ExportService) RenderDistribution(distribution *models.Distribution, format string) (*ExportFile, error) {
	var snapshot models.DistributionSnapshot
	if err := json.Unmarshal(distribution.Data, &snapshot); err != nil {
		return nil, appErrors.Internal(err, "failed to decode distribution snapshot")
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Distribution %s", snapshot.Name),
		Headers: []string{"Reviewer", "VK ID", "Student", "Homework", "Status"},
	}
	for _, plan := range snapshot.Reviewers {
		for _, hw := range plan.Current {
			dataset.Rows = append(dataset.Rows, []string{
				plan.Reviewer.FullName(),
				strconv.FormatInt(hw.StudentVKID, 10),
				hw.StudentName,
				hw.SubmissionURL,
				"assigned",
			})
		}
	}
	for _, eh := range snapshot.ErrorHomeworks {
		vkID := ""
		if eh.Homework.StudentVKID != nil {
			vkID = strconv.FormatInt(*eh.Homework.StudentVKID, 10)
		}
		dataset.Rows = append(dataset.Rows, []string{
			"",
			vkID,
			eh.StudentName,
			eh.Homework.ChatURL,
			string(eh.Message),
		})
	}

	switch format {
	case ExportFormatCSV, "":
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render csv")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "text/csv",
			Filename:    fmt.Sprintf("distribution-%d.csv", distribution.ID),
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(dataset)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to render pdf")
		}
		return &ExportFile{
			Content:     content,
			ContentType: "application/pdf",
			Filename:    fmt.Sprintf("distribution-%d.pdf", distribution.ID),
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
