package models

import (
	"time"
)

// SearchPayload holds the current name/skill/date filter of a mentor list
type SearchPayload struct {
	Name string `json:"name"`
	// Skill is never nil once normalised
	Skill []string `json:"skill"`
	// Date is empty or an ordered [start, end] pair
	Date []time.Time `json:"date"`
}

// NewSearchPayload seeds a payload from the URL skill parameter
func NewSearchPayload(skillFromURL string) SearchPayload {
	p := SearchPayload{Skill: []string{}, Date: []time.Time{}}
	if skillFromURL != "" {
		p.Skill = []string{skillFromURL}
	}
	return p
}

// Normalize returns a copy with nil slices replaced by empty ones. The
// slices are copied so callers cannot mutate committed state.
func (p SearchPayload) Normalize() SearchPayload {
	out := SearchPayload{
		Name:  p.Name,
		Skill: make([]string, len(p.Skill)),
		Date:  make([]time.Time, len(p.Date)),
	}
	copy(out.Skill, p.Skill)
	copy(out.Date, p.Date)
	return out
}

// WithSkill returns a copy whose skill filter is exactly [skill]; name and
// date are kept
func (p SearchPayload) WithSkill(skill string) SearchPayload {
	out := p.Normalize()
	out.Skill = []string{skill}
	return out
}
