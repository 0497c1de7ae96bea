package service

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vortechdev/enilai-gateway/internal/models"
	"github.com/vortechdev/enilai-gateway/internal/upstream"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// TeacherProfile is the editable staff profile.
type TeacherProfile struct {
	ID    models.ID `json:"id"`
	NIP   string    `json:"nip"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// TeacherProfileUpdate carries the editable teacher fields. Password is
// optional and only forwarded when set.
type TeacherProfileUpdate struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// StudentScoreRow is one graded subject on the student landing page.
type StudentScoreRow struct {
	Subject string  `json:"subject"`
	Score   float64 `json:"score"`
}

// StudentProfile couples the pupil record with their scores, the way the
// student landing page renders them.
type StudentProfile struct {
	ID      models.ID         `json:"id"`
	NIS     string            `json:"nis"`
	Name    string            `json:"name"`
	Email   string            `json:"email"`
	Class   string            `json:"class"`
	Major   string            `json:"major"`
	Scores  []StudentScoreRow `json:"scores"`
	Average float64           `json:"average"`
}

// PasswordUpdate carries a password change request. The confirmation match
// is checked locally; only matching pairs reach the upstream.
type PasswordUpdate struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ProfileService serves the role-scoped profile endpoints.
type ProfileService struct {
	client *upstream.Client
	logger *zap.Logger
}

// NewProfileService constructs the profile service.
func NewProfileService(client *upstream.Client, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{client: client, logger: logger}
}

// Teacher fetches the authenticated teacher's profile.
func (s *ProfileService) Teacher(ctx context.Context, sess *models.Session) (*TeacherProfile, error) {
	raw, err := s.client.WithToken(sess.Token).GetObject(ctx, "/teacher/profile")
	if err != nil {
		return nil, err
	}
	profile := &TeacherProfile{}
	if err := json.Unmarshal(raw, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode teacher profile")
	}
	return profile, nil
}

// UpdateTeacher pushes profile edits upstream and returns the fresh profile.
func (s *ProfileService) UpdateTeacher(ctx context.Context, sess *models.Session, update TeacherProfileUpdate) (*TeacherProfile, error) {
	if strings.TrimSpace(update.Name) == "" || strings.TrimSpace(update.Email) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "Semua field wajib diisi!")
	}
	payload := map[string]string{
		"name":  update.Name,
		"email": update.Email,
	}
	if update.Password != "" {
		payload["password"] = update.Password
	}
	if _, err := s.client.WithToken(sess.Token).Put(ctx, "/teacher/profile", payload); err != nil {
		return nil, err
	}
	return s.Teacher(ctx, sess)
}

// Student fetches the pupil profile and their scores in parallel and merges
// them into the landing page shape. The batch is all-or-nothing.
func (s *ProfileService) Student(ctx context.Context, sess *models.Session) (*StudentProfile, error) {
	caller := s.client.WithToken(sess.Token)

	var (
		student models.Student
		scores  []models.Score
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		raw, err := caller.GetObject(gctx, "/student/profile")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &student); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode student profile")
		}
		return nil
	})
	g.Go(func() error {
		raw, err := caller.GetList(gctx, "/student/scores")
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &scores); err != nil {
			return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode student scores")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Warn("student profile fetch failed", zap.Error(err))
		return nil, err
	}

	rows := make([]StudentScoreRow, 0, len(scores))
	var sum float64
	for _, score := range scores {
		rows = append(rows, StudentScoreRow{Subject: score.SubjectLabel(), Score: score.Value})
		sum += score.Value
	}
	var average float64
	if len(rows) > 0 {
		average = sum / float64(len(rows))
	}

	return &StudentProfile{
		ID:      student.ID,
		NIS:     student.NIS,
		Name:    student.Name,
		Email:   student.EmailAddress(),
		Class:   student.ClassLabel(),
		Major:   student.MajorLabel(),
		Scores:  rows,
		Average: average,
	}, nil
}

// UpdateStudentPassword changes the pupil's password. A confirmation that
// does not match the new password is rejected locally, with no upstream call.
func (s *ProfileService) UpdateStudentPassword(ctx context.Context, sess *models.Session, update PasswordUpdate) error {
	if update.CurrentPassword == "" || update.NewPassword == "" || update.ConfirmPassword == "" {
		return appErrors.Clone(appErrors.ErrValidation, "Semua field wajib diisi!")
	}
	if update.NewPassword != update.ConfirmPassword {
		return appErrors.Clone(appErrors.ErrValidation, "Konfirmasi password tidak cocok!")
	}

	// The upstream expects camelCase keys here, unlike its other endpoints.
	payload := map[string]string{
		"currentPassword": update.CurrentPassword,
		"newPassword":     update.NewPassword,
	}
	if _, err := s.client.WithToken(sess.Token).Put(ctx, "/student/update-password", payload); err != nil {
		return err
	}
	return nil
}
