package models

import "strings"

// unknownLabel is rendered whenever a foreign reference fails to resolve.
// Views must degrade to this placeholder instead of failing.
const unknownLabel = "Tidak Diketahui"

// Major is a study program (jurusan).
type Major struct {
	ID           ID     `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

func (m Major) RecordID() string { return m.ID.String() }

// Label renders the major the way the class picker shows it.
func (m Major) Label() string {
	if m.Abbreviation == "" {
		return m.Name
	}
	return m.Name + " (" + m.Abbreviation + ")"
}

// Class is a homeroom group (kelas), optionally carrying its major.
type Class struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	GroupName string `json:"group_name"`
	MajorID   ID     `json:"major_id"`
	Major     *Major `json:"major,omitempty"`
}

func (c Class) RecordID() string { return c.ID.String() }

// Label renders "XII RPL A" style class names, tolerating missing pieces.
func (c Class) Label() string {
	parts := make([]string, 0, 3)
	if c.Name != "" {
		parts = append(parts, c.Name)
	}
	if c.Major != nil && c.Major.Abbreviation != "" {
		parts = append(parts, c.Major.Abbreviation)
	}
	if c.GroupName != "" {
		parts = append(parts, c.GroupName)
	}
	if len(parts) == 0 {
		return unknownLabel
	}
	return strings.Join(parts, " ")
}

// MajorLabel returns the major abbreviation or the unknown placeholder.
func (c *Class) MajorLabel() string {
	if c == nil || c.Major == nil || c.Major.Abbreviation == "" {
		return unknownLabel
	}
	return c.Major.Abbreviation
}

// StudentAccount is the nested account object some endpoints attach.
type StudentAccount struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
}

// Student is a pupil record (siswa).
type Student struct {
	ID      ID              `json:"id"`
	NIS     string          `json:"nis"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	ClassID ID              `json:"class_id"`
	Class   *Class          `json:"class,omitempty"`
	User    *StudentAccount `json:"user,omitempty"`
}

func (s Student) RecordID() string { return s.ID.String() }

// EmailAddress prefers the nested account email over the flat field.
func (s Student) EmailAddress() string {
	if s.User != nil && s.User.Email != "" {
		return s.User.Email
	}
	return s.Email
}

// ClassLabel renders the class the student belongs to, or the placeholder.
func (s Student) ClassLabel() string {
	if s.Class == nil {
		return unknownLabel
	}
	return s.Class.Label()
}

// MajorLabel renders the student's major abbreviation via the class link.
func (s Student) MajorLabel() string {
	return s.Class.MajorLabel()
}

// Teacher is a staff record (guru).
type Teacher struct {
	ID    ID     `json:"id"`
	NIP   string `json:"nip"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (t Teacher) RecordID() string { return t.ID.String() }

// Subject is a taught course (mata pelajaran), optionally tied to a major.
type Subject struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	MajorID ID     `json:"major_id"`
	Major   *Major `json:"major,omitempty"`
}

func (s Subject) RecordID() string { return s.ID.String() }

// TeacherClass links a teacher to a class and subject (pengajaran).
type TeacherClass struct {
	ID        ID       `json:"id"`
	TeacherID ID       `json:"teacher_id"`
	ClassID   ID       `json:"class_id"`
	SubjectID ID       `json:"subject_id"`
	Teacher   *Teacher `json:"teacher,omitempty"`
	Class     *Class   `json:"class,omitempty"`
	Subject   *Subject `json:"subject,omitempty"`
}

func (tc TeacherClass) RecordID() string { return tc.ID.String() }

// TeacherLabel resolves the linked teacher name or the placeholder.
func (tc TeacherClass) TeacherLabel() string {
	if tc.Teacher == nil || tc.Teacher.Name == "" {
		return unknownLabel
	}
	return tc.Teacher.Name
}

// ClassLabel resolves the linked class name or the placeholder.
func (tc TeacherClass) ClassLabel() string {
	if tc.Class == nil {
		return unknownLabel
	}
	return tc.Class.Label()
}

// SubjectLabel resolves the linked subject name or the placeholder.
func (tc TeacherClass) SubjectLabel() string {
	if tc.Subject == nil || tc.Subject.Name == "" {
		return unknownLabel
	}
	return tc.Subject.Name
}

// Score is a numeric grade for a student on a subject. Some endpoints key
// the subject by name, others by identifier; both are kept.
type Score struct {
	ID        ID       `json:"id"`
	StudentID ID       `json:"student_id"`
	Subject   string   `json:"subject"`
	SubjectID ID       `json:"subject_id"`
	Value     float64  `json:"score"`
	Student   *Student `json:"student,omitempty"`
}

func (s Score) RecordID() string { return s.ID.String() }

// SubjectLabel prefers the subject name over the raw identifier.
func (s Score) SubjectLabel() string {
	if s.Subject != "" {
		return s.Subject
	}
	if s.SubjectID != "" {
		return s.SubjectID.String()
	}
	return unknownLabel
}

// StudentLabel resolves the linked student name or the placeholder.
func (s Score) StudentLabel() string {
	if s.Student == nil || s.Student.Name == "" {
		return unknownLabel
	}
	return s.Student.Name
}
