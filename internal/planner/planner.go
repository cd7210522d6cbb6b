package planner

import "github.com/noah-isme/study-planner-api/internal/dto"

// Run executes the budget, allocation and summary stages on a normalised input.
func Run(in *Input) *dto.StudyPlanResponse {
	budget, available := BuildBudget(in)
	alloc := Allocate(in, budget)
	return Summarize(in, alloc, available)
}

// Generate normalises the request and builds its plan. Identical requests
// always yield identical plans.
func Generate(req dto.StudyPlanRequest) (*dto.StudyPlanResponse, error) {
	in, err := Normalize(req)
	if err != nil {
		return nil, err
	}
	return Run(in), nil
}
