package planner

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/study-planner-api/internal/dto"
)

const (
	defaultRevisionDaysBefore = 2
	defaultStudyTime          = "morning"
	styleFixed                = "fixed"
	lengthPomodoro            = "pomodoro"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Normalize validates the request and materialises every derived field the
// allocator needs: per-weekday budgets, exam and revision dates, slicing.
func Normalize(req dto.StudyPlanRequest) (*Input, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if start.After(end) {
		return nil, invalid("start_date", "must not be after end_date")
	}

	in := &Input{Start: start, End: end}
	if err := normalizePreferences(in, req.Preferences); err != nil {
		return nil, err
	}

	if len(req.Subjects) == 0 {
		return nil, invalid("subjects", "at least one subject is required")
	}
	seen := make(map[string]bool, len(req.Subjects))
	in.Subjects = make([]Subject, 0, len(req.Subjects))
	for i, raw := range req.Subjects {
		subject, err := normalizeSubject(i, raw, in)
		if err != nil {
			return nil, err
		}
		if seen[subject.Name] {
			return nil, invalid("subjects", "duplicate subject name %q", subject.Name)
		}
		seen[subject.Name] = true
		in.Subjects = append(in.Subjects, subject)
	}

	return in, nil
}

func normalizePreferences(in *Input, prefs dto.PreferencesRequest) error {
	if math.IsNaN(prefs.SessionDuration) || prefs.SessionDuration <= 0 {
		return invalid("preferences.session_duration", "must be greater than 0")
	}
	if math.IsNaN(prefs.BreakDuration) || prefs.BreakDuration < 0 {
		return invalid("preferences.break_duration", "must not be negative")
	}
	in.SessionDuration = floorHours(prefs.SessionDuration)
	if in.SessionDuration <= 0 {
		return invalid("preferences.session_duration", "must be at least 0.0001 hours")
	}
	in.BreakDuration = prefs.BreakDuration

	hours, err := resolveWeekdayHours(prefs)
	if err != nil {
		return err
	}
	in.HoursByWeekday = hours

	studyTime := strings.ToLower(strings.TrimSpace(prefs.PreferredStudyTime))
	if studyTime == "" {
		studyTime = defaultStudyTime
	}
	anchor, ok := studyAnchors[studyTime]
	if !ok {
		return invalid("preferences.preferred_study_time", "unknown value %q", prefs.PreferredStudyTime)
	}
	in.AnchorMinutes = anchor

	switch strings.ToLower(prefs.StudyStyle) {
	case "", "flexible":
	case styleFixed:
		in.Fixed = true
	default:
		return invalid("preferences.study_style", "unknown value %q", prefs.StudyStyle)
	}

	switch strings.ToLower(prefs.SessionLength) {
	case "", "long":
		in.SliceHours = in.SessionDuration
		in.SliceBreakHours = in.BreakDuration
	case lengthPomodoro:
		in.SliceHours = floorHours(math.Min(pomodoroWork, in.SessionDuration))
		in.SliceBreakHours = pomodoroBreak
	default:
		return invalid("preferences.session_length", "unknown value %q", prefs.SessionLength)
	}

	switch {
	case prefs.RevisionDaysBefore < 0:
		return invalid("preferences.revision_days_before", "must be at least 1")
	case prefs.RevisionDaysBefore == 0:
		in.RevisionDaysBefore = defaultRevisionDaysBefore
	default:
		in.RevisionDaysBefore = prefs.RevisionDaysBefore
	}
	in.WeeklyRevision = prefs.WeeklyRevision

	in.BreakDays = make(map[string]struct{}, len(prefs.BreakDays))
	for _, raw := range prefs.BreakDays {
		day, err := parseDate("preferences.break_days", raw)
		if err != nil {
			return err
		}
		in.BreakDays[dateKey(day)] = struct{}{}
	}
	return nil
}

// resolveWeekdayHours prefers the explicit per-weekday mapping and falls back
// to the weekday/weekend pair. Weekdays missing from the mapping get no time.
func resolveWeekdayHours(prefs dto.PreferencesRequest) ([7]float64, error) {
	var hours [7]float64
	if len(prefs.AvailableHoursPerDay) > 0 {
		names := make([]string, 0, len(prefs.AvailableHoursPerDay))
		for name := range prefs.AvailableHoursPerDay {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			value := prefs.AvailableHoursPerDay[name]
			day, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
			if !ok {
				return hours, invalid("preferences.available_hours_per_day", "unknown weekday %q", name)
			}
			if err := checkDailyHours("preferences.available_hours_per_day."+strings.ToLower(name), value); err != nil {
				return hours, err
			}
			hours[day] = value
		}
		return hours, nil
	}

	if prefs.WeekdayHours == nil || prefs.WeekendHours == nil {
		return hours, invalid("preferences", "either available_hours_per_day or weekday_hours and weekend_hours are required")
	}
	if err := checkDailyHours("preferences.weekday_hours", *prefs.WeekdayHours); err != nil {
		return hours, err
	}
	if err := checkDailyHours("preferences.weekend_hours", *prefs.WeekendHours); err != nil {
		return hours, err
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if day == time.Saturday || day == time.Sunday {
			hours[day] = *prefs.WeekendHours
			continue
		}
		hours[day] = *prefs.WeekdayHours
	}
	return hours, nil
}

func checkDailyHours(field string, value float64) error {
	if math.IsNaN(value) || value < 0 || value > 24 {
		return invalid(field, "must be between 0 and 24 hours")
	}
	return nil
}

func normalizeSubject(index int, raw dto.SubjectRequest, in *Input) (Subject, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return Subject{}, invalid("subjects", "subject #%d must have a name", index+1)
	}
	field := "subjects." + name

	level, ok := raw.Importance.Level()
	if !ok {
		return Subject{}, invalid(field+".importance", "must be High, Medium, Low or a rating from 1 to 5")
	}
	difficulty, err := normalizeDifficulty(field+".difficulty", raw.Difficulty)
	if err != nil {
		return Subject{}, err
	}
	if len(raw.Topics) == 0 {
		return Subject{}, invalid(field+".topics", "at least one topic is required")
	}

	subject := Subject{
		Index:      index,
		Name:       name,
		Importance: level,
		Difficulty: difficulty,
		Topics:     make([]Topic, 0, len(raw.Topics)),
	}
	for _, t := range raw.Topics {
		topicName := strings.TrimSpace(t.Name)
		if topicName == "" {
			return Subject{}, invalid(field+".topics", "every topic must have a name")
		}
		if math.IsNaN(t.EstimatedHours) || math.IsInf(t.EstimatedHours, 0) || t.EstimatedHours <= 0 {
			return Subject{}, invalid(field+"."+topicName+".estimated_hours", "must be greater than 0")
		}
		topicDifficulty, err := normalizeDifficulty(field+"."+topicName+".difficulty", t.Difficulty)
		if err != nil {
			return Subject{}, err
		}
		estimated := roundHours(t.EstimatedHours)
		if estimated <= 0 {
			return Subject{}, invalid(field+"."+topicName+".estimated_hours", "must be at least 0.0001 hours")
		}
		subject.Topics = append(subject.Topics, Topic{
			Name:           topicName,
			EstimatedHours: estimated,
			Difficulty:     topicDifficulty,
		})
	}

	if strings.TrimSpace(raw.ExamDate) != "" {
		exam, err := parseDate(field+".exam_date", raw.ExamDate)
		if err != nil {
			return Subject{}, err
		}
		subject.HasExam = true
		subject.Exam = exam
		if !exam.Before(in.Start) && !exam.After(in.End) {
			revision := exam.AddDate(0, 0, -in.RevisionDaysBefore)
			if revision.Before(in.Start) {
				revision = in.Start
			}
			subject.HasRevision = true
			subject.Revision = revision
		}
	}
	return subject, nil
}

// normalizeDifficulty treats an omitted rating as the midpoint.
func normalizeDifficulty(field string, value int) (int, error) {
	if value == 0 {
		return 3, nil
	}
	if value < 1 || value > 5 {
		return 0, invalid(field, "must be between 1 and 5")
	}
	return value, nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalid(field, "must be a YYYY-MM-DD date")
	}
	return t, nil
}
