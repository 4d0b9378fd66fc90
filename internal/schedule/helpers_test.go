package schedule

import (
	"fmt"
	"time"
)

var testMonday = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return testMonday.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}
}

func sampleEvent(id string, start time.Time, minutes int) Event {
	return Event{
		ID:                PersistedID(id),
		Title:             "Consulta - João Silva",
		Start:             start,
		End:               start.Add(time.Duration(minutes) * time.Minute),
		Status:            StatusConfirmed,
		PatientID:         "1",
		PatientName:       "João Silva",
		AppointmentTypeID: "1",
		Payer:             PlanPayer(HealthPlan{ID: "1", Name: "Unimed", Color: "#00995D"}),
		Color:             "#4CAF50",
	}
}
