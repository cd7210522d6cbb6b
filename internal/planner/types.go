// Package planner turns a validated study-plan request into a day-by-day
// timetable. It is a pure function of its input: every call builds and
// discards its own allocation state, so concurrent callers need no locking.
package planner

import (
	"fmt"
	"math"
	"time"

	"github.com/noah-isme/study-planner-api/internal/dto"
)

const (
	dateLayout = "2006-01-02"

	// budgetEpsilon is the leftover day budget (hours) below which a day is considered full.
	budgetEpsilon = 0.01
	// hoursEpsilon absorbs float noise on per-topic accounting.
	hoursEpsilon = 1e-9
	// hoursScale fixes the granularity of every carved session and every
	// emitted hour value at 1/10000 h.
	hoursScale = 10000.0

	// dayEndMinutes closes a day's usable window at midnight.
	dayEndMinutes = 24 * 60

	urgencyWindowDays = 5
	urgentMinimum     = 2.0

	pomodoroWork  = 25.0 / 60.0
	pomodoroBreak = 5.0 / 60.0

	fullRevisionTopic   = "Full revision"
	weeklyRevisionTopic = "Weekly revision"
)

var studyAnchors = map[string]int{
	"morning":   7 * 60,
	"afternoon": 13 * 60,
	"evening":   18 * 60,
	"night":     21 * 60,
}

// ValidationError reports malformed or inconsistent input. No allocation
// work is done once one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// floorHours truncates h to the output quantum, tolerating float noise just
// below a quantum boundary.
func floorHours(h float64) float64 {
	return math.Floor(h*hoursScale+1e-6) / hoursScale
}

// roundHours rounds h to the output quantum.
func roundHours(h float64) float64 {
	return math.Round(h*hoursScale) / hoursScale
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Tier is the priority class of a subject on one day. Lower values are served first.
type Tier int

const (
	TierMandatory Tier = iota
	TierExamUrgent
	TierHigh
	TierMedium
	TierLow
)

func (t Tier) String() string {
	switch t {
	case TierMandatory:
		return "mandatory"
	case TierExamUrgent:
		return "exam_urgent"
	case TierHigh:
		return "high"
	case TierMedium:
		return "medium"
	case TierLow:
		return "low"
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// Topic is a canonical topic; its remaining hours live in allocationState.
type Topic struct {
	Name           string
	EstimatedHours float64
	Difficulty     int
}

// Subject is a canonical subject with its exam and revision dates resolved.
type Subject struct {
	Index      int
	Name       string
	Importance dto.Importance
	Difficulty int
	Topics     []Topic

	HasExam     bool
	Exam        time.Time
	HasRevision bool
	Revision    time.Time
}

// DaysToExam returns whole days from d until the exam.
func (s Subject) DaysToExam(d time.Time) (int, bool) {
	if !s.HasExam {
		return 0, false
	}
	return daysBetween(d, s.Exam), true
}

// ExamUrgent reports whether the exam falls within the urgency window starting at d.
func (s Subject) ExamUrgent(d time.Time) bool {
	days, ok := s.DaysToExam(d)
	return ok && days >= 0 && days < urgencyWindowDays
}

// RevisionDue reports whether d is the subject's pre-exam revision date.
func (s Subject) RevisionDue(d time.Time) bool {
	return s.HasRevision && s.Revision.Equal(d)
}

// TotalHours sums the estimated hours of all topics.
func (s Subject) TotalHours() float64 {
	var total float64
	for _, t := range s.Topics {
		total += t.EstimatedHours
	}
	return total
}

// Input is the canonical, fully resolved request.
type Input struct {
	Start time.Time
	End   time.Time

	HoursByWeekday [7]float64
	BreakDays      map[string]struct{}

	SessionDuration    float64
	BreakDuration      float64
	SliceHours         float64
	SliceBreakHours    float64
	AnchorMinutes      int
	Fixed              bool
	WeeklyRevision     bool
	RevisionDaysBefore int

	Subjects []Subject
}

// DayCount is the number of calendar dates in the range, inclusive.
func (in *Input) DayCount() int {
	return daysBetween(in.Start, in.End) + 1
}

// Session is one placed block; times are minutes after midnight.
type Session struct {
	SubjectIndex int
	Subject      string
	Topic        string
	Type         string
	StartMinute  float64
	EndMinute    float64
	Hours        float64
}

// Day is one date of the plan with its sessions in clock order.
type Day struct {
	Date     time.Time
	Budget   float64
	Sessions []Session
}

// Planned sums the session hours of the day.
func (d Day) Planned() float64 {
	var total float64
	for _, s := range d.Sessions {
		total += s.Hours
	}
	return total
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}
