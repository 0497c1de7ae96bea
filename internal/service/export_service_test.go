package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vortechdev/enilai-gateway/internal/models"
)

func scoresAndStudents(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scores":
			_, _ = w.Write([]byte(`[
				{"id":"1","student_id":"10","subject":"Matematika","score":88},
				{"id":"2","student_id":"99","subject":"Fisika","score":70}
			]`))
		case "/students":
			_, _ = w.Write([]byte(`[
				{"id":"10","nis":"1001","name":"Budi","class":{"id":"5","name":"XII","group_name":"A"}}
			]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestScoresExportCSV(t *testing.T) {
	client := newUpstreamClient(t, scoresAndStudents(t))
	svc := NewExportService(client, true, zap.NewNop())

	result, err := svc.Scores(context.Background(), testSession(), ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".csv"))

	body := string(result.Payload)
	assert.Contains(t, body, "NIS,Nama,Kelas,Mata Pelajaran,Nilai")
	assert.Contains(t, body, "1001,Budi,XII A,Matematika,88")
	// The unresolved student degrades to the placeholder instead of dropping.
	assert.Contains(t, body, "Tidak Diketahui")
}

func TestScoresExportXLSX(t *testing.T) {
	client := newUpstreamClient(t, scoresAndStudents(t))
	svc := NewExportService(client, true, zap.NewNop())

	result, err := svc.Scores(context.Background(), testSession(), ExportFormatXLSX)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Payload)
	assert.True(t, strings.HasSuffix(result.Filename, ".xlsx"))
}

func TestScoresExportPDF(t *testing.T) {
	client := newUpstreamClient(t, scoresAndStudents(t))
	svc := NewExportService(client, true, zap.NewNop())

	result, err := svc.Scores(context.Background(), testSession(), ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.NotEmpty(t, result.Payload)
}

func TestScoresExportUnknownFormat(t *testing.T) {
	client := newUpstreamClient(t, scoresAndStudents(t))
	svc := NewExportService(client, true, zap.NewNop())

	_, err := svc.Scores(context.Background(), testSession(), ExportFormat("docx"))
	require.Error(t, err)
}

func TestScoresExportDisabled(t *testing.T) {
	client := newUpstreamClient(t, scoresAndStudents(t))
	svc := NewExportService(client, false, zap.NewNop())

	_, err := svc.Scores(context.Background(), testSession(), ExportFormatCSV)
	require.Error(t, err)
}

func TestBuildScoreDatasetJoin(t *testing.T) {
	scores := []models.Score{{ID: "1", StudentID: "10", Subject: "Kimia", Value: 75}}
	students := []models.Student{{ID: "10", NIS: "1001", Name: "Budi"}}

	dataset := buildScoreDataset(scores, students)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "Budi", dataset.Rows[0]["Nama"])
	assert.Equal(t, "75", dataset.Rows[0]["Nilai"])
	assert.Equal(t, "Tidak Diketahui", dataset.Rows[0]["Kelas"])
}
