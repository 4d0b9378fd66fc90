package schedule

import "time"

// Snapshot is derived from the event collection and never edited directly.
type Snapshot struct {
	Total       int            `json:"total"`
	Confirmed   int            `json:"confirmed"`
	Pending     int            `json:"pending"`
	Cancelled   int            `json:"cancelled"`
	Completed   int            `json:"completed"`
	Today       int            `json:"today"`
	HealthPlans map[string]int `json:"health_plans"`
	Private     int            `json:"private"`
}

// Aggregate counts events by status, by payer, and those starting today in
// now's location.
func Aggregate(events []Event, now time.Time) Snapshot {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	s := Snapshot{
		Total:       len(events),
		HealthPlans: make(map[string]int),
	}

	for _, e := range events {
		switch e.Status {
		case StatusConfirmed:
			s.Confirmed++
		case StatusPending:
			s.Pending++
		case StatusCancelled:
			s.Cancelled++
		case StatusCompleted:
			s.Completed++
		}

		start := e.Start.In(now.Location())
		if !start.Before(dayStart) && start.Before(dayEnd) {
			s.Today++
		}

		switch {
		case e.Payer.IsPrivate:
			s.Private++
		case e.Payer.Plan != nil:
			s.HealthPlans[e.Payer.Plan.Name]++
		}
	}

	return s
}
