package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
	"github.com/vortechdev/enilai-gateway/pkg/export"
)

// ExportFormat is the requested download format for the score report.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportResult is the rendered report handed to the download handler.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type xlsxRenderer interface {
	Render(data export.Dataset, sheet string) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportService renders the score list as a downloadable report. Student
// names are resolved by joining against the student list; rows whose student
// cannot be resolved fall back to the unknown placeholder instead of being
// dropped.
type ExportService struct {
	client  *upstream.Client
	csv     csvRenderer
	xlsx    xlsxRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	enabled bool
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(client *upstream.Client, enabled bool, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		client:  client,
		csv:     export.NewCSVExporter(),
		xlsx:    export.NewXLSXExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		enabled: enabled,
		now:     time.Now,
	}
}

// Enabled reports whether exports are switched on in configuration.
func (s *ExportService) Enabled() bool {
	return s != nil && s.enabled
}

// Scores fetches the score and student lists in parallel, joins them and
// renders the dataset in the requested format.
func (s *ExportService) Scores(ctx context.Context, sess *models.Session, format ExportFormat) (*ExportResult, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exports are disabled")
	}

	caller := s.client.WithToken(sess.Token)

	var (
		scores   []models.Score
		students []models.Student
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := caller.GetList(gctx, "/scores")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &scores); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode score list")
		}
		return nil
	})
	g.Go(func() error {
		raw, err := caller.GetList(gctx, "/students")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &students); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode student list")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("score export fetch failed", zap.Error(err))
		return nil, err
	}

	dataset := buildScoreDataset(scores, students)
	title := "Daftar Nilai Siswa"

	var (
		payload     []byte
		contentType string
		err         error
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case ExportFormatXLSX:
		payload, err = s.xlsx.Render(dataset, "Nilai")
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		s.logger.Warn("score export render failed", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("nilai_%s.%s", s.now().UTC().Format("20060102_150405"), format)
	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func buildScoreDataset(scores []models.Score, students []models.Student) export.Dataset {
	byID := make(map[string]models.Student, len(students))
	for _, student := range students {
		byID[student.RecordID()] = student
	}

	rows := make([]map[string]string, 0, len(scores))
	for _, score := range scores {
		student, ok := byID[score.StudentID.String()]
		name := score.StudentLabel()
		nis := ""
		class := ""
		if ok {
			name = student.Name
			nis = student.NIS
			class = student.ClassLabel()
		}
		rows = append(rows, map[string]string{
			"NIS":            nis,
			"Nama":           name,
			"Kelas":          class,
			"Mata Pelajaran": score.SubjectLabel(),
			"Nilai":          strconv.FormatFloat(score.Value, 'f', -1, 64),
		})
	}

	return export.Dataset{
		Headers: []string{"NIS", "Nama", "Kelas", "Mata Pelajaran", "Nilai"},
		Rows:    rows,
	}
}
