package screen

import (
	"strconv"
	"strings"

	"github.com/vortechdev/enilai-gateway/internal/models"
	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

// Registry returns the configuration for every resource screen the gateway
// serves. The six screens are all instances of the same orchestrator; only
// this table differs between them.
func Registry() []Config {
	return []Config{
		studentsConfig(),
		classesConfig(),
		majorsConfig(),
		subjectsConfig(),
		teacherClassesConfig(),
		scoresConfig(),
	}
}

func studentsConfig() Config {
	return Config{
		Entity: "students",
		Path:   "/students",
		Roles:  []models.Role{models.RoleAdmin},
		Fields: []Field{
			{Name: "nis", Required: true, RequiredOnEdit: true},
			{Name: "name", Required: true, RequiredOnEdit: true},
			{Name: "email", Required: true},
			{Name: "password", Required: true},
			{Name: "class_id", Required: true, RequiredOnEdit: true},
		},
		Refs: []RefSpec{
			{Name: "classes", Path: "/classes", Decode: decodeListAs[models.Class]},
		},
		Decode: decodeListAs[models.Student],
		UniqueKey: func(r Record) string {
			return r.(models.Student).NIS
		},
		DraftKey: func(d Draft) string {
			return strings.TrimSpace(d["nis"])
		},
		FromRecord: func(r Record) Draft {
			student := r.(models.Student)
			classID := student.ClassID
			if classID == "" && student.Class != nil {
				classID = student.Class.ID
			}
			return Draft{
				"nis":      student.NIS,
				"name":     student.Name,
				"email":    student.EmailAddress(),
				"class_id": classID.String(),
			}
		},
		Payload: func(d Draft, editing bool) map[string]interface{} {
			payload := map[string]interface{}{
				"nis":      d["nis"],
				"name":     d["name"],
				"email":    d["email"],
				"class_id": d["class_id"],
			}
			if !editing {
				payload["password"] = d["password"]
			}
			return payload
		},
		Messages: Messages{
			Created:       "Siswa berhasil ditambahkan!",
			Updated:       "Data siswa berhasil diperbarui!",
			Deleted:       "Siswa berhasil dihapus!",
			Duplicate:     "NIS sudah terdaftar!",
			MissingFields: "Semua field wajib diisi saat menambah siswa.",
			LoadFailed:    "Gagal memuat data siswa. Silakan coba lagi.",
			SaveFailed:    "Gagal menyimpan data siswa. Periksa input dan coba lagi.",
			DeleteFailed:  "Gagal menghapus siswa. Silakan coba lagi.",
		},
	}
}

func classesConfig() Config {
	return Config{
		Entity: "classes",
		Path:   "/classes",
		Roles:  []models.Role{models.RoleAdmin},
		Fields: []Field{
			{Name: "name", Required: true, RequiredOnEdit: true},
			{Name: "group_name", Required: true, RequiredOnEdit: true},
			{Name: "major_id", Required: true, RequiredOnEdit: true},
		},
		Refs: []RefSpec{
			{Name: "majors", Path: "/majors", Decode: decodeListAs[models.Major]},
		},
		Decode: decodeListAs[models.Class],
		UniqueKey: func(r Record) string {
			return r.(models.Class).Name
		},
		DraftKey: func(d Draft) string {
			return strings.TrimSpace(d["name"])
		},
		FromRecord: func(r Record) Draft {
			class := r.(models.Class)
			majorID := class.MajorID
			if majorID == "" && class.Major != nil {
				majorID = class.Major.ID
			}
			return Draft{
				"name":       class.Name,
				"group_name": class.GroupName,
				"major_id":   majorID.String(),
			}
		},
		Payload: func(d Draft, editing bool) map[string]interface{} {
			return map[string]interface{}{
				"name":       d["name"],
				"group_name": d["group_name"],
				"major_id":   d["major_id"],
			}
		},
		Messages: Messages{
			Created:       "Kelas berhasil ditambahkan!",
			Updated:       "Kelas berhasil diperbarui!",
			Deleted:       "Kelas berhasil dihapus!",
			Duplicate:     "Nama kelas sudah ada!",
			MissingFields: "Semua field harus diisi!",
			LoadFailed:    "Gagal memuat data kelas. Silakan coba lagi nanti.",
			SaveFailed:    "Gagal menyimpan data kelas!",
			DeleteFailed:  "Gagal menghapus data kelas. Coba lagi nanti!",
		},
	}
}

func majorsConfig() Config {
	return Config{
		Entity: "majors",
		Path:   "/majors",
		Roles:  []models.Role{models.RoleAdmin},
		Fields: []Field{
			{Name: "name", Required: true, RequiredOnEdit: true},
			{Name: "abbreviation", Required: true, RequiredOnEdit: true},
		},
		Decode: decodeListAs[models.Major],
		UniqueKey: func(r Record) string {
			return r.(models.Major).Name
		},
		DraftKey: func(d Draft) string {
			return strings.TrimSpace(d["name"])
		},
		FromRecord: func(r Record) Draft {
			major := r.(models.Major)
			return Draft{
				"name":         major.Name,
				"abbreviation": major.Abbreviation,
			}
		},
		Payload: func(d Draft, editing bool) map[string]interface{} {
			return map[string]interface{}{
				"name":         d["name"],
				"abbreviation": d["abbreviation"],
			}
		},
		Messages: Messages{
			Created:       "Jurusan berhasil ditambahkan!",
			Updated:       "Jurusan berhasil diperbarui!",
			Deleted:       "Jurusan berhasil dihapus!",
			Duplicate:     "Nama jurusan sudah ada!",
			MissingFields: "Semua field harus diisi!",
			LoadFailed:    "Gagal memuat data jurusan. Silakan coba lagi nanti.",
			SaveFailed:    "Gagal menyimpan data jurusan!",
			DeleteFailed:  "Gagal menghapus data jurusan. Coba lagi nanti!",
		},
	}
}

func subjectsConfig() Config {
	return Config{
		Entity: "subjects",
		Path:   "/subjects",
		Roles:  []models.Role{models.RoleAdmin},
		Fields: []Field{
			{Name: "name", Required: true, RequiredOnEdit: true},
			{Name: "major_id"},
		},
		Refs: []RefSpec{
			{Name: "majors", Path: "/majors", Decode: decodeListAs[models.Major]},
		},
		Decode: decodeListAs[models.Subject],
		UniqueKey: func(r Record) string {
			return r.(models.Subject).Name
		},
		DraftKey: func(d Draft) string {
			return strings.TrimSpace(d["name"])
		},
		FromRecord: func(r Record) Draft {
			subject := r.(models.Subject)
			majorID := subject.MajorID
			if majorID == "" && subject.Major != nil {
				majorID = subject.Major.ID
			}
			return Draft{
				"name":     subject.Name,
				"major_id": majorID.String(),
			}
		},
		Payload: func(d Draft, editing bool) map[string]interface{} {
			// The major link is optional; an empty pick is sent as null.
			payload := map[string]interface{}{"name": d["name"]}
			if d["major_id"] != "" {
				payload["major_id"] = d["major_id"]
			} else {
				payload["major_id"] = nil
			}
			return payload
		},
		Messages: Messages{
			Created:       "Mata pelajaran berhasil ditambahkan!",
			Updated:       "Mata pelajaran berhasil diperbarui!",
			Deleted:       "Mata pelajaran berhasil dihapus!",
			Duplicate:     "Mata pelajaran sudah ada!",
			MissingFields: "Nama mata pelajaran wajib diisi!",
			LoadFailed:    "Gagal memuat data mata pelajaran. Silakan coba lagi nanti.",
			SaveFailed:    "Gagal menyimpan data mata pelajaran!",
			DeleteFailed:  "Gagal menghapus mata pelajaran. Coba lagi nanti!",
		},
	}
}

func teacherClassesConfig() Config {
	compositeKey := func(teacherID, classID, subjectID string) string {
		return teacherID + "/" + classID + "/" + subjectID
	}
	return Config{
		Entity: "teacher-classes",
		Path:   "/teacher-classes",
		Roles:  []models.Role{models.RoleAdmin},
		Fields: []Field{
			{Name: "teacher_id", Required: true, RequiredOnEdit: true},
			{Name: "class_id", Required: true, RequiredOnEdit: true},
			{Name: "subject_id", Required: true, RequiredOnEdit: true},
		},
		Refs: []RefSpec{
			{Name: "teachers", Path: "/teachers", Decode: decodeListAs[models.Teacher]},
			{Name: "classes", Path: "/classes", Decode: decodeListAs[models.Class]},
			{Name: "subjects", Path: "/subjects", Decode: decodeListAs[models.Subject]},
		},
		Decode: decodeListAs[models.TeacherClass],
		UniqueKey: func(r Record) string {
			tc := r.(models.TeacherClass)
			return compositeKey(tc.TeacherID.String(), tc.ClassID.String(), tc.SubjectID.String())
		},
		DraftKey: func(d Draft) string {
			return compositeKey(
				strings.TrimSpace(d["teacher_id"]),
				strings.TrimSpace(d["class_id"]),
				strings.TrimSpace(d["subject_id"]),
			)
		},
		FromRecord: func(r Record) Draft {
			tc := r.(models.TeacherClass)
			return Draft{
				"teacher_id": tc.TeacherID.String(),
				"class_id":   tc.ClassID.String(),
				"subject_id": tc.SubjectID.String(),
			}
		},
		Payload: func(d Draft, editing bool) map[string]interface{} {
			return map[string]interface{}{
				"teacher_id": d["teacher_id"],
				"class_id":   d["class_id"],
				"subject_id": d["subject_id"],
			}
		},
		Messages: Messages{
			Created:       "Data berhasil ditambahkan!",
			Updated:       "Data berhasil diperbarui!",
			Deleted:       "Data berhasil dihapus!",
			Duplicate:     "Data ini sudah ada!",
			MissingFields: "Guru, kelas, dan mata pelajaran harus dipilih!",
			LoadFailed:    "Gagal memuat data. Silakan coba lagi nanti.",
			SaveFailed:    "Gagal menyimpan data!",
			DeleteFailed:  "Gagal menghapus data. Coba lagi nanti!",
		},
	}
}

func scoresConfig() Config {
	return Config{
		Entity: "scores",
		Path:   "/scores",
		Roles:  []models.Role{models.RoleTeacher, models.RoleAdmin},
		Fields: []Field{
			{Name: "student_id", Required: true, RequiredOnEdit: true},
			{Name: "subject", Required: true, RequiredOnEdit: true},
			{Name: "score", Required: true, RequiredOnEdit: true},
		},
		Refs: []RefSpec{
			{Name: "students", Path: "/students", Decode: decodeListAs[models.Student]},
		},
		Decode: decodeListAs[models.Score],
		UniqueKey: func(r Record) string {
			score := r.(models.Score)
			return score.StudentID.String() + "|" + score.SubjectLabel()
		},
		DraftKey: func(d Draft) string {
			return strings.TrimSpace(d["student_id"]) + "|" + strings.TrimSpace(d["subject"])
		},
		FromRecord: func(r Record) Draft {
			score := r.(models.Score)
			return Draft{
				"student_id": score.StudentID.String(),
				"subject":    score.Subject,
				"score":      strconv.FormatFloat(score.Value, 'f', -1, 64),
			}
		},
		Payload: func(d Draft, editing bool) map[string]interface{} {
			value, _ := strconv.ParseFloat(strings.TrimSpace(d["score"]), 64)
			return map[string]interface{}{
				"student_id": d["student_id"],
				"subject":    d["subject"],
				"score":      value,
			}
		},
		Validate: func(d Draft, editing bool) error {
			value, err := strconv.ParseFloat(strings.TrimSpace(d["score"]), 64)
			if err != nil {
				return appErrors.Clone(appErrors.ErrValidation, "Nilai harus berupa angka!")
			}
			if value < 0 || value > 100 {
				return appErrors.Clone(appErrors.ErrValidation, "Nilai harus antara 0 dan 100!")
			}
			return nil
		},
		Messages: Messages{
			Created:       "Data nilai berhasil ditambahkan!",
			Updated:       "Data nilai berhasil diperbarui!",
			Deleted:       "Data nilai berhasil dihapus!",
			Duplicate:     "Nilai untuk siswa dan mapel ini sudah ada!",
			MissingFields: "Semua field wajib diisi!",
			LoadFailed:    "Gagal memuat data nilai. Silakan coba lagi nanti.",
			SaveFailed:    "Gagal menyimpan data nilai!",
			DeleteFailed:  "Gagal menghapus nilai. Silakan coba lagi nanti!",
		},
	}
}
