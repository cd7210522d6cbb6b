package planner

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/study-planner-api/internal/dto"
)

// Allocation is the committed output of the allocator.
type Allocation struct {
	Days          []Day
	Remaining     [][]float64
	RevisionHours float64
}

// allocationState is the only mutable state of a run. It is indexed by
// subject and topic position and never escapes Allocate.
type allocationState struct {
	remaining [][]float64
	cursor    []int

	studied      []bool
	firstStudied []time.Time
	lastStudied  []time.Time

	pinned    []bool
	pinMinute []float64

	revisionHours float64
}

func newAllocationState(subjects []Subject) *allocationState {
	s := &allocationState{
		remaining:    make([][]float64, len(subjects)),
		cursor:       make([]int, len(subjects)),
		studied:      make([]bool, len(subjects)),
		firstStudied: make([]time.Time, len(subjects)),
		lastStudied:  make([]time.Time, len(subjects)),
		pinned:       make([]bool, len(subjects)),
		pinMinute:    make([]float64, len(subjects)),
	}
	for i, subject := range subjects {
		s.remaining[i] = make([]float64, len(subject.Topics))
		for j, topic := range subject.Topics {
			s.remaining[i][j] = topic.EstimatedHours
		}
	}
	return s
}

// nextTopic returns the first topic of the subject with hours left, or -1.
func (s *allocationState) nextTopic(subject int) int {
	for s.cursor[subject] < len(s.remaining[subject]) {
		if s.remaining[subject][s.cursor[subject]] > hoursEpsilon {
			return s.cursor[subject]
		}
		s.remaining[subject][s.cursor[subject]] = 0
		s.cursor[subject]++
	}
	return -1
}

func (s *allocationState) hasRemaining(subject int) bool {
	return s.nextTopic(subject) >= 0
}

func (s *allocationState) consume(subject, topic int, hours float64, day time.Time) {
	s.remaining[subject][topic] -= hours
	if s.remaining[subject][topic] < hoursEpsilon {
		s.remaining[subject][topic] = 0
	}
	if !s.studied[subject] {
		s.studied[subject] = true
		s.firstStudied[subject] = day
	}
	s.lastStudied[subject] = day
}

type revisionKind int

const (
	revisionNone revisionKind = iota
	revisionPreExam
	revisionWeekly
)

// subjectRank is the per-day ranking of one subject. Tier is the tagged
// variant used for ordering; StudyTier is the tier its study sittings run at
// once any mandatory revision has been placed.
type subjectRank struct {
	Subject    int
	Tier       Tier
	StudyTier  Tier
	Revision   revisionKind
	CanStudy   bool
	daysToExam int
	difficulty int
}

func (r subjectRank) before(other subjectRank, tier func(subjectRank) Tier) bool {
	if tier(r) != tier(other) {
		return tier(r) < tier(other)
	}
	if r.daysToExam != other.daysToExam {
		return r.daysToExam < other.daysToExam
	}
	if r.difficulty != other.difficulty {
		return r.difficulty > other.difficulty
	}
	return r.Subject < other.Subject
}

func primaryTier(r subjectRank) Tier { return r.Tier }
func studyTier(r subjectRank) Tier   { return r.StudyTier }

// rankSubjects assigns every subject its tier for the day. Subjects with
// neither study left nor a revision due are left out.
func rankSubjects(in *Input, state *allocationState, day time.Time) []subjectRank {
	ranks := make([]subjectRank, 0, len(in.Subjects))
	for i, subject := range in.Subjects {
		r := subjectRank{
			Subject:    i,
			StudyTier:  importanceTier(subject, day),
			Revision:   revisionFor(in, state, subject, day),
			CanStudy:   state.hasRemaining(i),
			daysToExam: math.MaxInt,
			difficulty: subject.Difficulty,
		}
		if days, ok := subject.DaysToExam(day); ok && days >= 0 {
			r.daysToExam = days
		}
		if r.Revision == revisionNone && !r.CanStudy {
			continue
		}
		r.Tier = r.StudyTier
		if r.Revision != revisionNone {
			r.Tier = TierMandatory
		}
		ranks = append(ranks, r)
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].before(ranks[j], primaryTier)
	})
	return ranks
}

func importanceTier(subject Subject, day time.Time) Tier {
	if subject.ExamUrgent(day) {
		return TierExamUrgent
	}
	switch subject.Importance {
	case dto.ImportanceHigh:
		return TierHigh
	case dto.ImportanceMedium:
		return TierMedium
	default:
		return TierLow
	}
}

// revisionFor decides whether the subject owes a revision today. The
// pre-exam pass wins when it coincides with a weekly one.
func revisionFor(in *Input, state *allocationState, subject Subject, day time.Time) revisionKind {
	if subject.RevisionDue(day) {
		return revisionPreExam
	}
	if !in.WeeklyRevision || !state.studied[subject.Index] {
		return revisionNone
	}
	since := daysBetween(state.firstStudied[subject.Index], day)
	if since <= 0 || since%7 != 0 {
		return revisionNone
	}
	if daysBetween(state.lastStudied[subject.Index], day) > 7 {
		return revisionNone
	}
	if subject.HasExam && !day.Before(subject.Exam) {
		return revisionNone
	}
	return revisionWeekly
}

// Allocate walks the budget day by day, committing sessions greedily by tier.
// It never fails: hours that do not fit stay in Remaining.
func Allocate(in *Input, budget []DayBudget) *Allocation {
	state := newAllocationState(in.Subjects)
	days := make([]Day, 0, len(budget))
	for _, b := range budget {
		day := Day{Date: b.Date, Budget: b.Hours, Sessions: []Session{}}
		if b.Hours > 0 {
			builder := &dayBuilder{
				in:      in,
				state:   state,
				date:    b.Date,
				left:    b.Hours,
				clock:   float64(in.AnchorMinutes),
				studied: make(map[int]float64),
				seen:    make(map[int]bool),
			}
			builder.fill(rankSubjects(in, state, b.Date))
			day.Sessions = builder.sessions
		}
		days = append(days, day)
	}
	return &Allocation{
		Days:          days,
		Remaining:     state.remaining,
		RevisionHours: state.revisionHours,
	}
}

type dayBuilder struct {
	in       *Input
	state    *allocationState
	date     time.Time
	left     float64
	clock    float64
	sessions []Session
	studied  map[int]float64
	seen     map[int]bool
}

func (b *dayBuilder) full() bool {
	return b.left < budgetEpsilon
}

// fill runs the tier passes for one day in order: mandatory revisions, the
// exam-urgent minimum, one sitting per high-importance subject, then the
// remaining budget by rank.
func (b *dayBuilder) fill(ranks []subjectRank) {
	for _, r := range ranks {
		if r.Tier == TierMandatory {
			b.revise(r)
		}
	}

	study := make([]subjectRank, 0, len(ranks))
	for _, r := range ranks {
		if r.CanStudy {
			study = append(study, r)
		}
	}
	sort.SliceStable(study, func(i, j int) bool {
		return study[i].before(study[j], studyTier)
	})

	for _, r := range study {
		if r.StudyTier == TierExamUrgent {
			b.study(r.Subject, urgentMinimum-b.studied[r.Subject])
		}
	}
	for _, r := range study {
		if r.StudyTier == TierHigh {
			b.study(r.Subject, b.in.SessionDuration)
		}
	}
	for _, r := range study {
		b.study(r.Subject, math.Inf(1))
	}
}

func (b *dayBuilder) revise(r subjectRank) {
	if b.full() {
		return
	}
	subject := b.in.Subjects[r.Subject]
	topic := fullRevisionTopic
	if r.Revision == revisionWeekly {
		topic = weeklyRevisionTopic
	}
	target := math.Min(b.in.SessionDuration, b.left)
	var placed float64
	for target-placed > hoursEpsilon && !b.full() {
		hours := b.fit(subject, math.Min(b.in.SliceHours, math.Min(target-placed, b.left)))
		if hours <= 0 {
			break
		}
		b.place(subject, topic, dto.SessionTypeRevision, hours)
		placed += hours
	}
	b.state.revisionHours += placed
}

// study carves up to want hours for the subject from its topics in order,
// one slice at a time. It returns the hours placed.
func (b *dayBuilder) study(subjectIdx int, want float64) float64 {
	subject := b.in.Subjects[subjectIdx]
	var placed float64
	for want-placed > hoursEpsilon && !b.full() {
		topic := b.state.nextTopic(subjectIdx)
		if topic < 0 {
			break
		}
		hours := math.Min(b.in.SliceHours, b.state.remaining[subjectIdx][topic])
		hours = b.fit(subject, math.Min(hours, math.Min(b.left, want-placed)))
		if hours <= 0 {
			break
		}
		b.place(subject, subject.Topics[topic].Name, dto.SessionTypeStudy, hours)
		b.state.consume(subjectIdx, topic, hours, b.date)
		b.studied[subjectIdx] += hours
		placed += hours
	}
	return placed
}

// startFor returns the minute the subject's next session would start at: a
// break follows every earlier session, and under the fixed style a subject's
// first session of the day waits for its pinned time.
func (b *dayBuilder) startFor(subject Subject) float64 {
	start := b.clock
	if len(b.sessions) > 0 {
		start += b.in.SliceBreakHours * 60
	}
	if b.in.Fixed && !b.seen[subject.Index] && b.state.pinned[subject.Index] {
		start = math.Max(start, b.state.pinMinute[subject.Index])
	}
	return start
}

// fit quantizes hours and trims them to what is left of the day before
// midnight. It returns 0 once the window is spent.
func (b *dayBuilder) fit(subject Subject, hours float64) float64 {
	room := floorHours((dayEndMinutes - b.startFor(subject)) / 60)
	if room < budgetEpsilon {
		return 0
	}
	return floorHours(math.Min(hours, room))
}

// place appends a session at the subject's start minute and pins a fixed
// style subject the first time it is ever placed.
func (b *dayBuilder) place(subject Subject, topic, kind string, hours float64) {
	start := b.startFor(subject)
	if b.in.Fixed && !b.state.pinned[subject.Index] {
		b.state.pinned[subject.Index] = true
		b.state.pinMinute[subject.Index] = start
	}
	b.seen[subject.Index] = true

	b.clock = start + hours*60
	b.left -= hours
	b.sessions = append(b.sessions, Session{
		SubjectIndex: subject.Index,
		Subject:      subject.Name,
		Topic:        topic,
		Type:         kind,
		StartMinute:  start,
		EndMinute:    b.clock,
		Hours:        hours,
	})
}
