package main

import (
	"context"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/medbook/clinic-scheduling/internal/db"
	"github.com/medbook/clinic-scheduling/internal/logging"
	"github.com/medbook/clinic-scheduling/internal/scheduling"
)

func main() {
	logging.Setup("clinic-scheduling-seed", "dev")
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(context.Background(), pool); err != nil {
		log.Fatal().Err(err).Msg("apply migrations")
	}

	gofakeit.Seed(time.Now().UnixNano())

	providerIDs, err := seedProviders(context.Background(), pool, 25)
	if err != nil {
		log.Fatal().Err(err).Msg("seed providers")
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedSlots(context.Background(), pool, providerIDs); err != nil {
		log.Fatal().Err(err).Msg("seed slots")
	}

	log.Info().Msg("seed complete")
}

func seedProviders(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding providers")

	specialties := []string{
		"Dermatology",
		"Cardiology",
		"General Practice",
		"Orthopedics",
		"Endocrinology",
		"Neurology",
		"Pediatrics",
		"Psychiatry",
		"Ophthalmology",
		"ENT",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()
		name := "Dr. " + gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO providers (id, name, specialty, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
		`, id, name, spec)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Info().Msg("providers seeded")
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Info().Int("count", count).Msg("seeding patients")

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, first_name, last_name, email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, now(), now())
			`, uuid.New(), gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Email())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Info().Int("seeded", end).Int("total", count).Msg("patients progress")
	}

	log.Info().Msg("patients seeded")
	return nil
}

// seedSlots gives every provider a week of 9:00-17:00 working days cut
// into 30 minute slots.
func seedSlots(ctx context.Context, pool *pgxpool.Pool, providerIDs []uuid.UUID) error {
	log.Info().Int("providers", len(providerIDs)).Msg("seeding slots")

	store := scheduling.NewPgStore(pool)
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, providerID := range providerIDs {
		for day := 0; day < 7; day++ {
			dayStart := today.AddDate(0, 0, day).Add(9 * time.Hour)
			dayEnd := dayStart.Add(8 * time.Hour)

			slots, err := scheduling.AllocateSlots(providerID, dayStart, dayEnd, 30*time.Minute)
			if err != nil {
				return err
			}
			if err := store.InsertSlots(ctx, slots); err != nil {
				return err
			}
		}
	}

	log.Info().Msg("slots seeded")
	return nil
}
