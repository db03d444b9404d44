package metrics

import (
	"sort"

	"lumen/pkg/model"
)

// rankingWindow is the trailing window for events_ranking, in seconds.
const rankingWindow = 7 * 24 * 60 * 60

// EventCount is one entry of the events_ranking series.
type EventCount struct {
	EventName string `json:"event_name"`
	NbEvents  int    `json:"nb_events"`
}

// EventsRanking counts event occurrences over the tasks created in the
// trailing 7-day window ending at the latest created_at in the set, sorted
// by count descending with lexicographic tie-break. Returns an empty series
// when the window holds no events.
func EventsRanking(tasks []model.Task) []EventCount {
	if len(tasks) == 0 {
		return []EventCount{}
	}
	var latest int64
	for _, t := range tasks {
		if t.CreatedAt > latest {
			latest = t.CreatedAt
		}
	}
	cutoff := latest - rankingWindow

	counts := make(map[string]int)
	for _, t := range tasks {
		if t.CreatedAt < cutoff {
			continue
		}
		for _, e := range t.Events {
			counts[e.EventName]++
		}
	}

	ranking := make([]EventCount, 0, len(counts))
	for name, n := range counts {
		ranking = append(ranking, EventCount{EventName: name, NbEvents: n})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].NbEvents != ranking[j].NbEvents {
			return ranking[i].NbEvents > ranking[j].NbEvents
		}
		return ranking[i].EventName < ranking[j].EventName
	})
	return ranking
}

// PositionRate is one entry of the success_rate_per_task_position series.
type PositionRate struct {
	TaskPosition int     `json:"task_position"`
	SuccessRate  float64 `json:"success_rate"`
}

// SuccessRatePerTaskPosition groups tasks by their 1-based position within
// their session and computes the success rate per position. Session-less
// tasks are excluded. ok is false when no task in the set belongs to a
// session, which callers must report as "unavailable" rather than
// "insufficient data". Positions whose group has no labelled task are
// omitted.
func SuccessRatePerTaskPosition(tasks []model.Task, sessions []model.Session) ([]PositionRate, bool) {
	byID := make(map[string]*model.Session, len(sessions))
	for i := range sessions {
		byID[sessions[i].ID] = &sessions[i]
	}

	groups := make(map[int][]model.Task)
	inSession := false
	for _, t := range tasks {
		if t.SessionID == "" {
			continue
		}
		sess, ok := byID[t.SessionID]
		if !ok {
			continue
		}
		inSession = true
		pos, ok := sess.TaskPosition(t.ID)
		if !ok {
			continue
		}
		groups[pos] = append(groups[pos], t)
	}
	if !inSession {
		return nil, false
	}

	positions := make([]int, 0, len(groups))
	for pos := range groups {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	series := make([]PositionRate, 0, len(positions))
	for _, pos := range positions {
		rate, ok := GlobalSuccessRate(groups[pos])
		if !ok {
			continue
		}
		series = append(series, PositionRate{TaskPosition: pos, SuccessRate: rate})
	}
	return series, true
}
