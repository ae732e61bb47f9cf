package models

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mentor is a mentor record as returned by the remote mentor-search API.
// It is read-only here; every nested reference may be absent.
type Mentor struct {
	ID              int64            `json:"id"`
	User            *MentorUser      `json:"user,omitempty"`
	Skills          []Skill          `json:"skills,omitempty"`
	Star            float64          `json:"star"`
	AssignedClass   *ClassRef        `json:"assignedClass,omitempty"`
	MentorCode      string           `json:"mentorCode"`
	MentorSchedules []MentorSchedule `json:"mentorSchedules,omitempty"`
}

// MentorUser is the user profile nested in a mentor
type MentorUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Gender   string `json:"gender"`
	Avatar   string `json:"avatar"`
	Role     *Role  `json:"role,omitempty"`
}

type Role struct {
	RoleName string `json:"roleName"`
}

type Skill struct {
	ID        int64  `json:"id"`
	SkillName string `json:"skillName"`
}

// ClassRef references the class a mentor is assigned to
type ClassRef struct {
	ID        int64  `json:"id"`
	ClassName string `json:"className,omitempty"`
}

// MentorSchedule is one availability slot. Times are passed through as sent
// by the API.
type MentorSchedule struct {
	ID        int64  `json:"id"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Status    string `json:"status,omitempty"`
}

// MentorListItem is the flat record the list item renderer consumes
type MentorListItem struct {
	Key          int64            `json:"key"`
	RoleItem     string           `json:"roleItem"`
	Name         string           `json:"name"`
	Specialized  string           `json:"specialized"`
	Gender       string           `json:"gender"`
	Star         float64          `json:"star"`
	SameClass    bool             `json:"sameClass"`
	Schedule     []MentorSchedule `json:"schedule"`
	ShowSchedule bool             `json:"showSchedule"`
	IDUser       int64            `json:"idUser"`
	Code         string           `json:"code"`
	Avatar       string           `json:"avatar"`
}

// ToListItem projects a mentor for rendering. viewerClassID is the assigned
// class of the user looking at the list, nil when unknown. Nil receivers and
// nil nested fields produce zero values.
func (m *Mentor) ToListItem(viewerClassID *int64) MentorListItem {
	if m == nil {
		return MentorListItem{Schedule: []MentorSchedule{}}
	}

	item := MentorListItem{
		Key:          m.ID,
		Specialized:  SkillLabel(m.Skills),
		Star:         m.Star,
		SameClass:    m.AssignedClass != nil && viewerClassID != nil && m.AssignedClass.ID == *viewerClassID,
		Schedule:     m.MentorSchedules,
		ShowSchedule: len(m.MentorSchedules) > 0,
		Code:         m.MentorCode,
	}
	if item.Schedule == nil {
		item.Schedule = []MentorSchedule{}
	}

	if u := m.User; u != nil {
		item.Name = u.FullName
		item.Gender = u.Gender
		item.IDUser = u.ID
		item.Avatar = u.Avatar
		if u.Role != nil {
			item.RoleItem = CapitalizeFirst(u.Role.RoleName)
		}
	}

	return item
}

// CapitalizeFirst upper-cases the first letter and lower-cases the rest,
// so "MENTOR" and "mentor" both become "Mentor". Later words stay lower
// case: "MENTOR LEADER" becomes "Mentor leader".
func CapitalizeFirst(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := cases.Lower(language.Und).String(s)
	_, size := utf8.DecodeRuneInString(lower)
	return cases.Upper(language.Und).String(lower[:size]) + lower[size:]
}

// SkillLabel joins skill names for display: trimmed, blanks dropped,
// duplicates (case-insensitive) removed, original order kept.
func SkillLabel(skills []Skill) string {
	if len(skills) == 0 {
		return ""
	}

	seen := make(map[string]struct{}, len(skills))
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		name := strings.Join(strings.Fields(s.SkillName), " ")
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		names = append(names, name)
	}

	return strings.Join(names, ", ")
}
