package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vortechdev/enilai-gateway/internal/models"
)

func disabledCache() *CacheService {
	return NewCacheService(nil, nil, 0, zap.NewNop(), false)
}

func testSession() *models.Session {
	return &models.Session{ID: "sess", Token: "token", User: models.User{Role: models.RoleAdmin}}
}

func TestAdminDashboardAggregates(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/students":
			_, _ = w.Write([]byte(`[
				{"id":"1","name":"A","class":{"id":"10","name":"XII","group_name":"A","major":{"id":"20","abbreviation":"RPL"}}},
				{"id":"2","name":"B","class":{"id":"10","name":"XII","group_name":"A","major":{"id":"20","abbreviation":"RPL"}}},
				{"id":"3","name":"C"}
			]`))
		case "/teachers":
			_, _ = w.Write([]byte(`{"data":[{"id":"1"},{"id":"2"}]}`))
		case "/classes":
			_, _ = w.Write([]byte(`[{"id":"10"}]`))
		case "/majors":
			_, _ = w.Write([]byte(`[{"id":"20"},{"id":"21"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	svc := NewDashboardService(client, disabledCache(), 0, zap.NewNop())

	dashboard, cached, err := svc.Admin(context.Background(), testSession())
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 3, dashboard.StudentCount)
	assert.Equal(t, 2, dashboard.TeacherCount)
	assert.Equal(t, 1, dashboard.ClassCount)
	assert.Equal(t, 2, dashboard.MajorCount)

	assert.Equal(t, 2, dashboard.StudentsPerClass["XII RPL A"])
	assert.Equal(t, 1, dashboard.StudentsPerClass["Tidak Diketahui"])
	assert.Equal(t, 2, dashboard.StudentsPerMajor["RPL"])
	assert.Equal(t, 1, dashboard.StudentsPerMajor["Tidak Diketahui"])
}

func TestAdminDashboardFailsWhenAnyFetchFails(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/majors" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	svc := NewDashboardService(client, disabledCache(), 0, zap.NewNop())

	_, _, err := svc.Admin(context.Background(), testSession())
	require.Error(t, err)
}

func TestOverviewAveragesPerSubject(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scores":
			_, _ = w.Write([]byte(`[
				{"id":"1","student_id":"1","subject":"Matematika","score":80},
				{"id":"2","student_id":"2","subject":"Matematika","score":90},
				{"id":"3","student_id":"1","subject":"Fisika","score":70}
			]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	})
	svc := NewDashboardService(client, disabledCache(), 0, zap.NewNop())

	overview, _, err := svc.Overview(context.Background(), testSession())
	require.NoError(t, err)

	assert.Equal(t, 3, overview.ScoreCount)
	require.Len(t, overview.SubjectAverages, 2)
	assert.Equal(t, "Matematika", overview.SubjectAverages[0].Subject)
	assert.InDelta(t, 85.0, overview.SubjectAverages[0].Average, 0.001)
	assert.Equal(t, "Fisika", overview.SubjectAverages[1].Subject)
	assert.InDelta(t, 70.0, overview.SubjectAverages[1].Average, 0.001)
}

func TestTeacherDashboardResolvesLabels(t *testing.T) {
	client := newUpstreamClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teacher-class", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id":"1","teacher":{"id":"5","name":"Pak Budi"},"class":{"id":"10","name":"XII","group_name":"A"},"subject":{"id":"7","name":"Kimia"}},
			{"id":"2"}
		]`))
	})
	svc := NewDashboardService(client, disabledCache(), 0, zap.NewNop())

	dashboard, err := svc.Teacher(context.Background(), testSession())
	require.NoError(t, err)

	require.Len(t, dashboard.Assignments, 2)
	assert.Equal(t, "Pak Budi", dashboard.Assignments[0].Teacher)
	assert.Equal(t, "Kimia", dashboard.Assignments[0].Subject)
	assert.Equal(t, "Tidak Diketahui", dashboard.Assignments[1].Teacher)
	assert.Equal(t, "Tidak Diketahui", dashboard.Assignments[1].Class)
}

func TestAveragesBySubjectEmpty(t *testing.T) {
	assert.Empty(t, averagesBySubject(nil))
}
