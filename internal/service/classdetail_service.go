package service

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// ScoreStats summarizes the grades recorded for one class and subject.
// Graded is zero when nothing is recorded yet; the other fields are then
// meaningless and the client renders placeholders.
type ScoreStats struct {
	Average float64 `json:"average"`
	Highest float64 `json:"highest"`
	Lowest  float64 `json:"lowest"`
	Graded  int     `json:"graded"`
}

// ClassDetail is the teacher's view of one assignment: the class roster plus
// every grade recorded for the assignment's subject.
type ClassDetail struct {
	ID       models.ID        `json:"id"`
	Class    models.Class     `json:"class"`
	Subject  models.Subject   `json:"subject"`
	Students []models.Student `json:"students"`
	Scores   []models.Score   `json:"scores"`
	Stats    ScoreStats       `json:"stats"`
}

// ScoreSubmission is one inline grade entry from the class-detail page.
type ScoreSubmission struct {
	StudentID string `json:"student_id"`
	Score     string `json:"score"`
}

// ClassDetailService serves the teacher class-detail page: assignment
// lookup, roster, per-subject scores and inline grade submission.
type ClassDetailService struct {
	client *upstream.Client
	logger *zap.Logger
}

// NewClassDetailService constructs the class-detail service.
func NewClassDetailService(client *upstream.Client, logger *zap.Logger) *ClassDetailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassDetailService{client: client, logger: logger}
}

// Detail resolves the assignment, then fetches the class roster and the
// subject's scores in parallel. The roster/score batch is all-or-nothing.
func (s *ClassDetailService) Detail(ctx context.Context, sess *models.Session, assignmentID string) (*ClassDetail, error) {
	caller := s.client.WithToken(sess.Token)

	assignment, err := s.fetchAssignment(ctx, caller, assignmentID)
	if err != nil {
		return nil, err
	}

	var (
		students []models.Student
		scores   []models.Score
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(fetchListInto(gctx, caller, "/students/class/"+assignment.Class.ID.String(), &students))
	g.Go(fetchListInto(gctx, caller, scoresPath(assignment), &scores))
	if err := g.Wait(); err != nil {
		s.logger.Warn("class detail fetch failed",
			zap.String("assignment_id", assignmentID),
			zap.Error(err))
		return nil, err
	}

	return &ClassDetail{
		ID:       assignment.ID,
		Class:    *assignment.Class,
		Subject:  *assignment.Subject,
		Students: students,
		Scores:   scores,
		Stats:    statsFor(scores),
	}, nil
}

// SubmitScore records one grade and returns the page with the score list
// refetched, so the caller never renders from a locally patched copy.
func (s *ClassDetailService) SubmitScore(ctx context.Context, sess *models.Session, assignmentID string, submission ScoreSubmission) (*ClassDetail, error) {
	if strings.TrimSpace(submission.StudentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Siswa harus dipilih!")
	}
	raw := strings.TrimSpace(submission.Score)
	if raw == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Nilai tidak boleh kosong.")
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Nilai harus berupa angka!")
	}
	if value < 0 || value > 100 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Nilai harus antara 0 dan 100!")
	}

	caller := s.client.WithToken(sess.Token)
	assignment, err := s.fetchAssignment(ctx, caller, assignmentID)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"student_id": submission.StudentID,
		"class_id":   assignment.Class.ID,
		"subject_id": assignment.Subject.ID,
		"score":      value,
	}
	if _, err := caller.Post(ctx, "/scores", payload); err != nil {
		return nil, err
	}

	return s.Detail(ctx, sess, assignmentID)
}

// fetchAssignment loads one teacher-class link and requires both of its
// nested references; the page cannot render without them.
func (s *ClassDetailService) fetchAssignment(ctx context.Context, caller *upstream.Caller, assignmentID string) (*models.TeacherClass, error) {
	raw, err := caller.GetObject(ctx, "/teacher-classes/"+assignmentID)
	if err != nil {
		return nil, err
	}
	assignment := &models.TeacherClass{}
	if err := json.Unmarshal(raw, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode assignment")
	}
	if assignment.Class == nil || assignment.Subject == nil {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "Data pengajaran tidak lengkap!")
	}
	return assignment, nil
}

func scoresPath(assignment *models.TeacherClass) string {
	return "/scores/class/" + assignment.Class.ID.String() + "/subject/" + assignment.Subject.ID.String()
}

func statsFor(scores []models.Score) ScoreStats {
	if len(scores) == 0 {
		return ScoreStats{}
	}
	stats := ScoreStats{
		Graded:  len(scores),
		Highest: scores[0].Value,
		Lowest:  scores[0].Value,
	}
	var sum float64
	for _, score := range scores {
		sum += score.Value
		if score.Value > stats.Highest {
			stats.Highest = score.Value
		}
		if score.Value < stats.Lowest {
			stats.Lowest = score.Value
		}
	}
	stats.Average = sum / float64(len(scores))
	return stats
}
