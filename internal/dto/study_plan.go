package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Importance accepts either a label (High/Medium/Low) or a 1-5 rating.
type Importance string

// Importance labels after normalisation.
const (
	ImportanceHigh   Importance = "High"
	ImportanceMedium Importance = "Medium"
	ImportanceLow    Importance = "Low"
)

// UnmarshalJSON accepts a JSON string or number.
func (i *Importance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*i = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*i = Importance(strings.TrimSpace(raw))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("importance must be a string or number: %w", err)
	}
	*i = Importance(n.String())
	return nil
}

// Level resolves the importance into a label, reporting false for unknown values.
func (i Importance) Level() (Importance, bool) {
	switch strings.ToLower(string(i)) {
	case "high":
		return ImportanceHigh, true
	case "medium":
		return ImportanceMedium, true
	case "low":
		return ImportanceLow, true
	}
	n, err := strconv.ParseFloat(string(i), 64)
	if err != nil || n < 1 || n > 5 || n != float64(int(n)) {
		return "", false
	}
	switch {
	case n >= 4:
		return ImportanceHigh, true
	case n == 3:
		return ImportanceMedium, true
	default:
		return ImportanceLow, true
	}
}

// UserProfile is echoed for display only; the planner never reads it.
type UserProfile struct {
	Name  string `json:"name,omitempty"`
	Level string `json:"level,omitempty"`
}

// TopicRequest is one unit of study inside a subject.
type TopicRequest struct {
	Name           string  `json:"name" validate:"required"`
	EstimatedHours float64 `json:"estimated_hours"`
	Difficulty     int     `json:"difficulty" validate:"omitempty,min=1,max=5"`
}

// SubjectRequest describes a subject, its exam and its ordered topics.
type SubjectRequest struct {
	Name       string         `json:"name" validate:"required"`
	Importance Importance     `json:"importance" validate:"required"`
	ExamDate   string         `json:"exam_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Difficulty int            `json:"difficulty" validate:"omitempty,min=1,max=5"`
	Topics     []TopicRequest `json:"topics" validate:"dive"`
}

// PreferencesRequest carries the study-time budget and session shaping options.
type PreferencesRequest struct {
	AvailableHoursPerDay map[string]float64 `json:"available_hours_per_day,omitempty"`
	WeekdayHours         *float64           `json:"weekday_hours,omitempty" validate:"omitempty,min=0,max=24"`
	WeekendHours         *float64           `json:"weekend_hours,omitempty" validate:"omitempty,min=0,max=24"`
	SessionDuration      float64            `json:"session_duration"`
	BreakDuration        float64            `json:"break_duration" validate:"min=0"`
	PreferredStudyTime   string             `json:"preferred_study_time,omitempty" validate:"omitempty,oneof=morning afternoon evening night"`
	StudyStyle           string             `json:"study_style,omitempty" validate:"omitempty,oneof=fixed flexible"`
	SessionLength        string             `json:"session_length,omitempty" validate:"omitempty,oneof=long pomodoro"`
	RevisionDaysBefore   int                `json:"revision_days_before,omitempty" validate:"min=0"`
	WeeklyRevision       bool               `json:"weekly_revision"`
	BreakDays            []string           `json:"break_days,omitempty" validate:"dive,datetime=2006-01-02"`
}

// StudyPlanRequest is the body of POST /api/study-plan.
type StudyPlanRequest struct {
	UserProfile UserProfile        `json:"user_profile"`
	Subjects    []SubjectRequest   `json:"subjects" validate:"required,min=1,dive"`
	StartDate   string             `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string             `json:"end_date" validate:"required,datetime=2006-01-02"`
	Preferences PreferencesRequest `json:"preferences"`
}

// Session types.
const (
	SessionTypeStudy    = "study"
	SessionTypeRevision = "revision"
)

// SessionResponse is one scheduled block.
type SessionResponse struct {
	Subject       string  `json:"subject"`
	Topic         string  `json:"topic"`
	SessionType   string  `json:"session_type"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	DurationHours float64 `json:"duration_hours"`
}

// DayResponse groups the sessions of one calendar date.
type DayResponse struct {
	Date     string            `json:"date"`
	Sessions []SessionResponse `json:"sessions"`
}

// UnallocatedTopic reports hours the engine could not place.
type UnallocatedTopic struct {
	Subject        string  `json:"subject"`
	Topic          string  `json:"topic"`
	HoursRemaining float64 `json:"hours_remaining"`
}

// StudyPlanResponse is the generated plan.
type StudyPlanResponse struct {
	Days                 []DayResponse      `json:"days"`
	TotalStudyHours      float64            `json:"total_study_hours"`
	SubjectsDistribution map[string]float64 `json:"subjects_distribution"`
	InsufficientTime     bool               `json:"insufficient_time"`
	TotalHoursNeeded     float64            `json:"total_hours_needed"`
	AvailableHours       float64            `json:"available_hours"`
	UnallocatedTopics    []UnallocatedTopic `json:"unallocated_topics"`
}

// BatchStudyPlanRequest asks for several independent plans at once.
type BatchStudyPlanRequest struct {
	Requests []StudyPlanRequest `json:"requests" validate:"required,min=1"`
}

// BatchStudyPlanItem holds either a plan or the reason it was rejected.
type BatchStudyPlanItem struct {
	Index  int                `json:"index"`
	Plan   *StudyPlanResponse `json:"plan,omitempty"`
	Detail string             `json:"detail,omitempty"`
}

// BatchStudyPlanResponse keeps results in request order.
type BatchStudyPlanResponse struct {
	Results []BatchStudyPlanItem `json:"results"`
}
