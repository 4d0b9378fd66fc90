package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hackgods/clinidesk/internal/db"
	"github.com/hackgods/clinidesk/internal/logger"
	"github.com/hackgods/clinidesk/internal/schedule"
)

func main() {
	lg, err := logger.New(getEnv("APP_ENV", "dev"), "info")
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		lg.Fatal("POSTGRES_DSN is required")
	}
	ownerID := getEnv("SEED_OWNER_ID", "1")
	patients := getInt("SEED_PATIENTS", 200)
	appointments := getInt("SEED_APPOINTMENTS", 120)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, dsn, lg)
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	faker := gofakeit.New(uint64(time.Now().UnixNano()))
	catalog := schedule.DemoCatalog()

	if err := seedReference(context.Background(), pool, catalog); err != nil {
		lg.Fatal("seed reference data", zap.Error(err))
	}
	seeded, err := seedPatients(context.Background(), pool, faker, patients)
	if err != nil {
		lg.Fatal("seed patients", zap.Error(err))
	}
	catalog.Patients = append(catalog.Patients, seeded...)

	repo := schedule.NewPgRepository(pool)
	if err := seedAppointments(context.Background(), repo, faker, catalog, ownerID, appointments); err != nil {
		lg.Fatal("seed appointments", zap.Error(err))
	}

	lg.Info("seed complete",
		zap.String("owner_id", ownerID),
		zap.Int("patients", len(catalog.Patients)),
		zap.Int("appointments", appointments),
	)
}

func seedReference(ctx context.Context, pool *pgxpool.Pool, c schedule.Catalog) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, p := range c.Patients {
		if _, err := tx.Exec(ctx, `
			INSERT INTO patients (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, p.ID, p.Name); err != nil {
			return err
		}
	}
	for _, t := range c.AppointmentTypes {
		if _, err := tx.Exec(ctx, `
			INSERT INTO appointment_types (id, name, color) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color
		`, t.ID, t.Name, t.Color); err != nil {
			return err
		}
	}
	for _, p := range c.HealthPlans {
		if _, err := tx.Exec(ctx, `
			INSERT INTO health_plans (id, name, color) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color
		`, p.ID, p.Name, p.Color); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, faker *gofakeit.Faker, count int) ([]schedule.Patient, error) {
	const batchSize = 500

	out := make([]schedule.Patient, 0, count)
	for offset := 0; offset < count; offset += batchSize {
		end := min(offset+batchSize, count)

		tx, err := pool.Begin(ctx)
		if err != nil {
			return nil, err
		}

		for i := offset; i < end; i++ {
			p := schedule.Patient{ID: uuid.NewString(), Name: faker.Name()}
			if _, err := tx.Exec(ctx, `INSERT INTO patients (id, name) VALUES ($1, $2)`, p.ID, p.Name); err != nil {
				_ = tx.Rollback(ctx)
				return nil, err
			}
			out = append(out, p)
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}
	return out, nil
}

var seedStatuses = []schedule.Status{
	schedule.StatusConfirmed,
	schedule.StatusConfirmed,
	schedule.StatusPending,
	schedule.StatusCompleted,
	schedule.StatusCancelled,
}

var seedNotes = []string{
	"Primeira consulta",
	"Retorno para avaliação de exames",
	"Consulta de rotina",
	"Exame de rotina",
	"Paciente solicitou encaixe",
	"",
}

// seedAppointments spreads appointments over the next two weeks of work days,
// on the quarter hour and inside the default work hours.
func seedAppointments(ctx context.Context, repo *schedule.PgRepository, faker *gofakeit.Faker, c schedule.Catalog, ownerID string, count int) error {
	wh := schedule.DefaultWorkHours()
	if err := repo.SaveWorkHours(ctx, ownerID, wh); err != nil {
		return err
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := 0; i < count; i++ {
		day := today.AddDate(0, 0, faker.Number(0, 13))
		for !wh.HasDay(day.Weekday()) {
			day = day.AddDate(0, 0, 1)
		}

		minutes := schedule.DurationOptions[faker.Number(0, len(schedule.DurationOptions)-1)]
		start := day.Add(time.Duration(faker.Number(8*4, 16*4)) * 15 * time.Minute)
		patient := c.Patients[faker.Number(0, len(c.Patients)-1)]
		typ := c.AppointmentTypes[faker.Number(0, len(c.AppointmentTypes)-1)]

		payer := schedule.PrivatePayer()
		if faker.Bool() {
			payer = schedule.PlanPayer(c.HealthPlans[faker.Number(0, len(c.HealthPlans)-1)])
		}

		e := schedule.Event{
			ID:                schedule.PersistedID(uuid.NewString()),
			Title:             "Consulta - " + patient.Name,
			Start:             start,
			End:               start.Add(time.Duration(minutes) * time.Minute),
			Status:            seedStatuses[faker.Number(0, len(seedStatuses)-1)],
			PatientID:         patient.ID,
			PatientName:       patient.Name,
			AppointmentTypeID: typ.ID,
			Payer:             payer,
			Notes:             faker.RandomString(seedNotes),
			Color:             typ.Color,
		}
		if err := repo.UpsertEvent(ctx, ownerID, e); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
