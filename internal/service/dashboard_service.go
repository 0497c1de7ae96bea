package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

const (
	adminDashboardCacheKey = "dashboard:admin"
	scoreOverviewCacheKey  = "dashboard:overview"
)

// AdminDashboard aggregates the counts and distributions the admin landing
// page renders.
type AdminDashboard struct {
	StudentCount     int            `json:"student_count"`
	TeacherCount     int            `json:"teacher_count"`
	ClassCount       int            `json:"class_count"`
	MajorCount       int            `json:"major_count"`
	StudentsPerClass map[string]int `json:"students_per_class"`
	StudentsPerMajor map[string]int `json:"students_per_major"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// SubjectAverage is the mean score for one subject.
type SubjectAverage struct {
	Subject string  `json:"subject"`
	Count   int     `json:"count"`
	Average float64 `json:"average"`
}

// ScoreOverview summarizes grading activity across the school.
type ScoreOverview struct {
	StudentCount    int              `json:"student_count"`
	ClassCount      int              `json:"class_count"`
	ScoreCount      int              `json:"score_count"`
	SubjectAverages []SubjectAverage `json:"subject_averages"`
	GeneratedAt     time.Time        `json:"generated_at"`
}

// TeacherAssignment is one row of the teacher's landing page.
type TeacherAssignment struct {
	ID      string `json:"id"`
	Teacher string `json:"teacher"`
	Class   string `json:"class"`
	Subject string `json:"subject"`
}

// TeacherDashboard lists the authenticated teacher's assignments.
type TeacherDashboard struct {
	Assignments []TeacherAssignment `json:"assignments"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// DashboardService builds the role landing pages by aggregating upstream
// lists. The admin aggregations are cached; they are identical for every
// admin session, so the cache key carries no session component.
type DashboardService struct {
	client *upstream.Client
	cache  *CacheService
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(client *upstream.Client, cache *CacheService, ttl time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &DashboardService{client: client, cache: cache, ttl: ttl, logger: logger, now: time.Now}
}

// Admin aggregates the admin landing page. The boolean reports a cache hit.
func (s *DashboardService) Admin(ctx context.Context, sess *models.Session) (*AdminDashboard, bool, error) {
	if s.cache.Enabled() {
		var cached AdminDashboard
		if hit, err := s.cache.Get(ctx, adminDashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	caller := s.client.WithToken(sess.Token)

	var (
		students []models.Student
		teachers []models.Teacher
		classes  []models.Class
		majors   []models.Major
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetchListInto(gctx, caller, "/students", &students))
	g.Go(fetchListInto(gctx, caller, "/teachers", &teachers))
	g.Go(fetchListInto(gctx, caller, "/classes", &classes))
	g.Go(fetchListInto(gctx, caller, "/majors", &majors))
	if err := g.Wait(); err != nil {
		s.logger.Warn("admin dashboard aggregation failed", zap.Error(err))
		return nil, false, err
	}

	perClass := make(map[string]int)
	perMajor := make(map[string]int)
	for _, student := range students {
		perClass[student.ClassLabel()]++
		perMajor[student.MajorLabel()]++
	}

	dashboard := &AdminDashboard{
		StudentCount:     len(students),
		TeacherCount:     len(teachers),
		ClassCount:       len(classes),
		MajorCount:       len(majors),
		StudentsPerClass: perClass,
		StudentsPerMajor: perMajor,
		GeneratedAt:      s.now().UTC(),
	}

	if err := s.cache.Set(ctx, adminDashboardCacheKey, dashboard, s.ttl); err != nil {
		s.logger.Warn("admin dashboard cache write failed", zap.Error(err))
	}
	return dashboard, false, nil
}

// Overview aggregates school-wide grading activity. The boolean reports a
// cache hit.
func (s *DashboardService) Overview(ctx context.Context, sess *models.Session) (*ScoreOverview, bool, error) {
	if s.cache.Enabled() {
		var cached ScoreOverview
		if hit, err := s.cache.Get(ctx, scoreOverviewCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	caller := s.client.WithToken(sess.Token)

	var (
		students []models.Student
		classes  []models.Class
		scores   []models.Score
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetchListInto(gctx, caller, "/students", &students))
	g.Go(fetchListInto(gctx, caller, "/classes", &classes))
	g.Go(fetchListInto(gctx, caller, "/scores", &scores))
	if err := g.Wait(); err != nil {
		s.logger.Warn("score overview aggregation failed", zap.Error(err))
		return nil, false, err
	}

	overview := &ScoreOverview{
		StudentCount:    len(students),
		ClassCount:      len(classes),
		ScoreCount:      len(scores),
		SubjectAverages: averagesBySubject(scores),
		GeneratedAt:     s.now().UTC(),
	}

	if err := s.cache.Set(ctx, scoreOverviewCacheKey, overview, s.ttl); err != nil {
		s.logger.Warn("score overview cache write failed", zap.Error(err))
	}
	return overview, false, nil
}

// Teacher lists the authenticated teacher's class assignments. Not cached;
// the list is specific to the caller and cheap to fetch.
func (s *DashboardService) Teacher(ctx context.Context, sess *models.Session) (*TeacherDashboard, error) {
	raw, err := s.client.WithToken(sess.Token).GetList(ctx, "/teacher-class")
	if err != nil {
		s.logger.Warn("teacher dashboard fetch failed", zap.Error(err))
		return nil, err
	}

	var links []models.TeacherClass
	if err := json.Unmarshal(raw, &links); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode teacher assignments")
	}

	assignments := make([]TeacherAssignment, 0, len(links))
	for _, link := range links {
		assignments = append(assignments, TeacherAssignment{
			ID:      link.RecordID(),
			Teacher: link.TeacherLabel(),
			Class:   link.ClassLabel(),
			Subject: link.SubjectLabel(),
		})
	}

	return &TeacherDashboard{Assignments: assignments, GeneratedAt: s.now().UTC()}, nil
}

// Invalidate drops the cached aggregations, typically after a mutation.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// averagesBySubject groups scores by subject label and computes means. Order
// follows first appearance so repeated renders stay stable.
func averagesBySubject(scores []models.Score) []SubjectAverage {
	order := make([]string, 0)
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, score := range scores {
		subject := score.SubjectLabel()
		if _, seen := counts[subject]; !seen {
			order = append(order, subject)
		}
		sums[subject] += score.Value
		counts[subject]++
	}

	averages := make([]SubjectAverage, 0, len(order))
	for _, subject := range order {
		averages = append(averages, SubjectAverage{
			Subject: subject,
			Count:   counts[subject],
			Average: sums[subject] / float64(counts[subject]),
		})
	}
	return averages
}

// fetchListInto returns a closure fetching and decoding one upstream list.
// The destination must outlive the errgroup wait.
func fetchListInto[T any](ctx context.Context, caller *upstream.Caller, path string, dest *[]T) func() error {
	return func() error {
		raw, err := caller.GetList(ctx, path)
		if err != nil {
			return err
		}
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode upstream list")
		}
		*dest = items
		return nil
	}
}
