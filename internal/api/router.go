package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medbook/clinic-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Manager         *scheduling.Manager
	PgPool          *pgxpool.Pool
	Redis           *redis.Client
	DefaultSlotSpan time.Duration
	Env             string
	Version         string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/slots/generate", generateSlotsHandler(cfg.Manager, cfg.DefaultSlotSpan))
	r.Get("/slots", listSlotsHandler(cfg.Manager))

	r.Post("/appointments", bookAppointmentHandler(cfg.Manager))
	r.Get("/appointments", listAppointmentsHandler(cfg.Manager))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Manager))
	r.Put("/appointments/{id}", overrideAppointmentHandler(cfg.Manager))
	r.Post("/appointments/{id}/confirm", confirmAppointmentHandler(cfg.Manager))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Manager))
	r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Manager))
	r.Post("/appointments/{id}/reschedule", rescheduleAppointmentHandler(cfg.Manager))

	return r
}
