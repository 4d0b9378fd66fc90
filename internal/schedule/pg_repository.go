package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

var _ Store = (*PgRepository)(nil)

// Helpers

func scanEvent(row pgx.Row) (*Event, error) {
	var (
		e         Event
		id        string
		planID    *string
		planName  *string
		planColor *string
	)

	err := row.Scan(
		&id,
		&e.Title,
		&e.Start,
		&e.End,
		&e.Status,
		&e.PatientID,
		&e.PatientName,
		&e.AppointmentTypeID,
		&planID,
		&planName,
		&planColor,
		&e.Payer.IsPrivate,
		&e.Notes,
		&e.Color,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}

	e.ID = PersistedID(id)
	if planID != nil && !e.Payer.IsPrivate {
		plan := HealthPlan{ID: *planID}
		if planName != nil {
			plan.Name = *planName
		}
		if planColor != nil {
			plan.Color = *planColor
		}
		e.Payer.Plan = &plan
	}
	return &e, nil
}

// Interface methods

func (r *PgRepository) LoadEvents(ctx context.Context, ownerID string) ([]Event, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.title, a.start_time, a.end_time, a.status,
		       a.patient_id, a.patient_name, a.appointment_type_id,
		       a.health_plan_id, hp.name, hp.color,
		       a.is_private, a.notes, a.color
		FROM appointments a
		LEFT JOIN health_plans hp ON hp.id = a.health_plan_id
		WHERE a.owner_id = $1
		ORDER BY a.start_time, a.created_at
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query appointments: %w", err)
	}
	defer rows.Close()

	var result []Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) UpsertEvent(ctx context.Context, ownerID string, e Event) error {
	if e.ID.IsDraft() {
		return ErrInvalidEventID
	}

	var planID *string
	if e.Payer.Plan != nil && !e.Payer.IsPrivate {
		id := e.Payer.Plan.ID
		planID = &id
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (
			id, owner_id, title, start_time, end_time, status,
			patient_id, patient_name, appointment_type_id,
			health_plan_id, is_private, notes, color, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now(), now())
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    status = EXCLUDED.status,
		    patient_id = EXCLUDED.patient_id,
		    patient_name = EXCLUDED.patient_name,
		    appointment_type_id = EXCLUDED.appointment_type_id,
		    health_plan_id = EXCLUDED.health_plan_id,
		    is_private = EXCLUDED.is_private,
		    notes = EXCLUDED.notes,
		    color = EXCLUDED.color,
		    updated_at = now()
		WHERE appointments.owner_id = EXCLUDED.owner_id
	`, e.ID.Value(), ownerID, e.Title, e.Start, e.End, e.Status,
		e.PatientID, e.PatientName, e.AppointmentTypeID,
		planID, e.Payer.IsPrivate, e.Notes, e.Color)
	if err != nil {
		return fmt.Errorf("upsert appointment: %w", err)
	}

	return nil
}

func (r *PgRepository) DeleteEvent(ctx context.Context, ownerID string, id EventID) error {
	if id.IsDraft() {
		return nil
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1 AND owner_id = $2
	`, id.Value(), ownerID)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) LoadWorkHours(ctx context.Context, ownerID string) (WorkHours, bool, error) {
	var (
		wh   WorkHours
		days []int32
	)
	err := r.pool.QueryRow(ctx, `
		SELECT start_time, end_time, days_of_week
		FROM work_hours
		WHERE owner_id = $1
	`, ownerID).Scan(&wh.StartTime, &wh.EndTime, &days)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return WorkHours{}, false, nil
		}
		return WorkHours{}, false, fmt.Errorf("load work hours: %w", err)
	}

	wh.DaysOfWeek = make([]int, len(days))
	for i, d := range days {
		wh.DaysOfWeek[i] = int(d)
	}
	return wh, true, nil
}

func (r *PgRepository) SaveWorkHours(ctx context.Context, ownerID string, wh WorkHours) error {
	days := make([]int32, len(wh.DaysOfWeek))
	for i, d := range wh.DaysOfWeek {
		days[i] = int32(d)
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO work_hours (owner_id, start_time, end_time, days_of_week, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (owner_id) DO UPDATE
		SET start_time = EXCLUDED.start_time,
		    end_time = EXCLUDED.end_time,
		    days_of_week = EXCLUDED.days_of_week,
		    updated_at = now()
	`, ownerID, wh.StartTime, wh.EndTime, days)
	if err != nil {
		return fmt.Errorf("save work hours: %w", err)
	}
	return nil
}

func (r *PgRepository) Catalog(ctx context.Context) (Catalog, error) {
	var c Catalog

	patients, err := r.pool.Query(ctx, `SELECT id, name FROM patients ORDER BY name`)
	if err != nil {
		return Catalog{}, fmt.Errorf("query patients: %w", err)
	}
	c.Patients, err = pgx.CollectRows(patients, func(row pgx.CollectableRow) (Patient, error) {
		var p Patient
		err := row.Scan(&p.ID, &p.Name)
		return p, err
	})
	if err != nil {
		return Catalog{}, fmt.Errorf("scan patients: %w", err)
	}

	types, err := r.pool.Query(ctx, `SELECT id, name, color FROM appointment_types ORDER BY name`)
	if err != nil {
		return Catalog{}, fmt.Errorf("query appointment types: %w", err)
	}
	c.AppointmentTypes, err = pgx.CollectRows(types, func(row pgx.CollectableRow) (AppointmentType, error) {
		var t AppointmentType
		err := row.Scan(&t.ID, &t.Name, &t.Color)
		return t, err
	})
	if err != nil {
		return Catalog{}, fmt.Errorf("scan appointment types: %w", err)
	}

	plans, err := r.pool.Query(ctx, `SELECT id, name, color FROM health_plans ORDER BY name`)
	if err != nil {
		return Catalog{}, fmt.Errorf("query health plans: %w", err)
	}
	c.HealthPlans, err = pgx.CollectRows(plans, func(row pgx.CollectableRow) (HealthPlan, error) {
		var p HealthPlan
		err := row.Scan(&p.ID, &p.Name, &p.Color)
		return p, err
	})
	if err != nil {
		return Catalog{}, fmt.Errorf("scan health plans: %w", err)
	}

	return c, nil
}
