package planner

import (
	"fmt"
	"math"

	"github.com/noah-isme/study-planner-api/internal/dto"
)

// Summarize aggregates the committed days into the response shape. It is
// pure aggregation: totals, per-subject hours and the unallocated report.
func Summarize(in *Input, alloc *Allocation, available float64) *dto.StudyPlanResponse {
	resp := &dto.StudyPlanResponse{
		Days:                 make([]dto.DayResponse, 0, len(alloc.Days)),
		SubjectsDistribution: make(map[string]float64, len(in.Subjects)),
		AvailableHours:       roundHours(available),
		UnallocatedTopics:    []dto.UnallocatedTopic{},
	}

	perSubject := make([]float64, len(in.Subjects))
	var total float64
	for _, day := range alloc.Days {
		out := dto.DayResponse{
			Date:     dateKey(day.Date),
			Sessions: make([]dto.SessionResponse, 0, len(day.Sessions)),
		}
		for _, s := range day.Sessions {
			hours := roundHours(s.Hours)
			out.Sessions = append(out.Sessions, dto.SessionResponse{
				Subject:       s.Subject,
				Topic:         s.Topic,
				SessionType:   s.Type,
				StartTime:     clockLabel(s.StartMinute),
				EndTime:       clockLabel(s.EndMinute),
				DurationHours: hours,
			})
			perSubject[s.SubjectIndex] += hours
			total += hours
		}
		resp.Days = append(resp.Days, out)
	}

	var needed float64
	for i, subject := range in.Subjects {
		resp.SubjectsDistribution[subject.Name] = roundHours(perSubject[i])
		needed += subject.TotalHours()
		for j, topic := range subject.Topics {
			left := alloc.Remaining[i][j]
			if left <= hoursEpsilon {
				continue
			}
			resp.UnallocatedTopics = append(resp.UnallocatedTopics, dto.UnallocatedTopic{
				Subject:        subject.Name,
				Topic:          topic.Name,
				HoursRemaining: roundHours(left),
			})
		}
	}
	needed += alloc.RevisionHours

	resp.TotalStudyHours = roundHours(total)
	resp.TotalHoursNeeded = roundHours(needed)
	resp.InsufficientTime = resp.TotalHoursNeeded > resp.AvailableHours
	return resp
}

// clockLabel renders minutes after midnight as HH:MM. The allocator never
// runs past midnight, so a session ending there reads 24:00.
func clockLabel(minutes float64) string {
	total := int(math.Round(minutes))
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
