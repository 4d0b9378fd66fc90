package schedule

import "time"

// DemoCatalog is the reference data a store without a database serves.
func DemoCatalog() Catalog {
	return Catalog{
		Patients: []Patient{
			{ID: "1", Name: "João Silva"},
			{ID: "2", Name: "Maria Oliveira"},
			{ID: "3", Name: "Carlos Santos"},
			{ID: "4", Name: "Ana Pereira"},
			{ID: "5", Name: "Lucas Ferreira"},
		},
		AppointmentTypes: []AppointmentType{
			{ID: "1", Name: "Consulta Inicial", Color: "#4CAF50"},
			{ID: "2", Name: "Retorno", Color: "#2196F3"},
			{ID: "3", Name: "Emergência", Color: "#F44336"},
			{ID: "4", Name: "Exame", Color: "#9C27B0"},
		},
		HealthPlans: []HealthPlan{
			{ID: "1", Name: "Unimed", Color: "#00995D"},
			{ID: "2", Name: "Amil", Color: "#0066CC"},
			{ID: "3", Name: "SulAmérica", Color: "#FF5722"},
			{ID: "4", Name: "Bradesco Saúde", Color: "#E91E63"},
		},
	}
}

type demoSlot struct {
	id       string
	dayShift int
	hour     int
	minute   int
	patient  int
	typ      int
	plan     int // index into HealthPlans, -1 for private
	status   Status
	notes    string
}

var demoSlots = []demoSlot{
	{"1", 0, 9, 0, 0, 0, 0, StatusConfirmed, "Primeira consulta - Avaliação inicial"},
	{"2", 0, 11, 0, 1, 1, 1, StatusPending, "Retorno para avaliação de exames"},
	{"3", 0, 14, 0, 3, 3, -1, StatusCompleted, "Exame de rotina realizado com sucesso"},
	{"4", 0, 16, 30, 4, 0, 3, StatusConfirmed, "Consulta de rotina"},
	{"5", 1, 8, 30, 2, 2, 2, StatusCancelled, "Paciente cancelou por motivos pessoais"},
	{"6", 1, 10, 0, 0, 0, 0, StatusConfirmed, "Primeira consulta"},
	{"7", 1, 13, 0, 1, 1, 1, StatusPending, "Avaliação de resultados"},
	{"8", 2, 9, 0, 3, 3, 3, StatusConfirmed, "Exame de rotina"},
	{"9", 2, 11, 0, 4, 0, -1, StatusConfirmed, "Consulta de rotina"},
	{"10", 2, 15, 0, 2, 2, 2, StatusCancelled, "Paciente remarcou para a próxima semana"},
	{"11", 7, 10, 0, 1, 1, 1, StatusPending, "Retorno para avaliação"},
	{"12", 7, 14, 0, 3, 3, -1, StatusConfirmed, "Exame de rotina"},
}

// DemoEvents builds one hour appointments spread over today, the next two
// days and next week, relative to now.
func DemoEvents(now time.Time) []Event {
	c := DemoCatalog()
	events := make([]Event, 0, len(demoSlots))
	for _, s := range demoSlots {
		day := now.AddDate(0, 0, s.dayShift)
		start := time.Date(day.Year(), day.Month(), day.Day(), s.hour, s.minute, 0, 0, now.Location())
		patient := c.Patients[s.patient]
		typ := c.AppointmentTypes[s.typ]

		payer := PrivatePayer()
		if s.plan >= 0 {
			payer = PlanPayer(c.HealthPlans[s.plan])
		}

		events = append(events, Event{
			ID:                PersistedID(s.id),
			Title:             "Consulta - " + patient.Name,
			Start:             start,
			End:               start.Add(time.Hour),
			Status:            s.status,
			PatientID:         patient.ID,
			PatientName:       patient.Name,
			AppointmentTypeID: typ.ID,
			Payer:             payer,
			Notes:             s.notes,
			Color:             typ.Color,
		})
	}
	return events
}
