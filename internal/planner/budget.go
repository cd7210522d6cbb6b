package planner

import "time"

// DayBudget is the study-time capacity of one calendar date.
type DayBudget struct {
	Date  time.Time
	Hours float64
}

// BuildBudget lists every date in [Start, End] with its budget and returns
// the total available hours. Break days get zero.
func BuildBudget(in *Input) ([]DayBudget, float64) {
	days := make([]DayBudget, 0, in.DayCount())
	var available float64
	for d := in.Start; !d.After(in.End); d = d.AddDate(0, 0, 1) {
		hours := in.HoursByWeekday[d.Weekday()]
		if _, off := in.BreakDays[dateKey(d)]; off {
			hours = 0
		}
		days = append(days, DayBudget{Date: d, Hours: hours})
		available += hours
	}
	return days, available
}
