package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleHome(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", RoleAdmin.Home())
	assert.Equal(t, "/teacher/dashboard", RoleTeacher.Home())
	assert.Equal(t, "/student/dashboard", RoleStudent.Home())
	assert.Equal(t, "/login", Role("supervisor").Home())
	assert.Equal(t, "/login", Role("").Home())
}

func TestRoleLoginHome(t *testing.T) {
	assert.Equal(t, "/admin/dashboard", RoleAdmin.LoginHome())
	assert.Equal(t, "/teacher/dashboard", RoleTeacher.LoginHome())
	assert.Equal(t, "/login", RoleStudent.LoginHome())
	assert.Equal(t, "/login", Role("supervisor").LoginHome())
}

func TestIDAcceptsStringAndNumber(t *testing.T) {
	var payload struct {
		A ID `json:"a"`
		B ID `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"42","b":42}`), &payload))
	assert.Equal(t, ID("42"), payload.A)
	assert.Equal(t, ID("42"), payload.B)
}

func TestClassLabelDegradesGracefully(t *testing.T) {
	full := Class{Name: "XII", GroupName: "A", Major: &Major{Abbreviation: "RPL"}}
	assert.Equal(t, "XII RPL A", full.Label())

	noMajor := Class{Name: "XII", GroupName: "A"}
	assert.Equal(t, "XII A", noMajor.Label())

	empty := Class{}
	assert.Equal(t, "Tidak Diketahui", empty.Label())
}

func TestStudentLabelsHandleMissingLinks(t *testing.T) {
	orphan := Student{Name: "Budi"}
	assert.Equal(t, "Tidak Diketahui", orphan.ClassLabel())
	assert.Equal(t, "Tidak Diketahui", orphan.MajorLabel())
}

func TestStudentEmailPrefersNestedAccount(t *testing.T) {
	s := Student{Email: "flat@x.id", User: &StudentAccount{Email: "nested@x.id"}}
	assert.Equal(t, "nested@x.id", s.EmailAddress())

	s.User = nil
	assert.Equal(t, "flat@x.id", s.EmailAddress())
}

func TestScoreSubjectLabelFallbacks(t *testing.T) {
	assert.Equal(t, "Matematika", Score{Subject: "Matematika"}.SubjectLabel())
	assert.Equal(t, "7", Score{SubjectID: "7"}.SubjectLabel())
	assert.Equal(t, "Tidak Diketahui", Score{}.SubjectLabel())
}
