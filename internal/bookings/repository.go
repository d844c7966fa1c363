package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Appointment is one row of the appointment ledger.
type Appointment struct {
	ID            uuid.UUID `json:"id"`
	Service       string    `json:"service"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`
	EventLink     string    `json:"event_link"`
	BookedAt      time.Time `json:"booked_at"`
}

type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository persists appointments to Postgres.
type Repository struct {
	db db
}

// NewRepository creates a repository backed by a pgx pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("bookings: pgx pool required")
	}
	return &Repository{db: pool}
}

// NewRepositoryWithDB allows injecting mocks for tests.
func NewRepositoryWithDB(conn db) *Repository {
	if conn == nil {
		panic("bookings: db required")
	}
	return &Repository{db: conn}
}

const insertAppointmentSQL = `
INSERT INTO appointments (id, service, customer_name, customer_phone, starts_at, ends_at, event_link, booked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// Insert writes a row, assigning an ID when none is set.
func (r *Repository) Insert(ctx context.Context, appt *Appointment) error {
	if appt.ID == uuid.Nil {
		appt.ID = uuid.New()
	}
	if appt.BookedAt.IsZero() {
		appt.BookedAt = time.Now().UTC()
	}
	_, err := r.db.Exec(ctx, insertAppointmentSQL,
		appt.ID, appt.Service, appt.CustomerName, appt.CustomerPhone,
		appt.StartsAt, appt.EndsAt, appt.EventLink, appt.BookedAt,
	)
	if err != nil {
		return fmt.Errorf("bookings: insert appointment: %w", err)
	}
	return nil
}

const listUpcomingSQL = `
SELECT id, service, customer_name, customer_phone, starts_at, ends_at, event_link, booked_at
FROM appointments
WHERE starts_at >= $1
ORDER BY starts_at
LIMIT $2`

// ListUpcoming returns appointments starting at or after from, earliest first.
func (r *Repository) ListUpcoming(ctx context.Context, from time.Time, limit int) ([]Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, listUpcomingSQL, from, limit)
	if err != nil {
		return nil, fmt.Errorf("bookings: list upcoming: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.Service, &a.CustomerName, &a.CustomerPhone, &a.StartsAt, &a.EndsAt, &a.EventLink, &a.BookedAt); err != nil {
			return nil, fmt.Errorf("bookings: scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookings: iterate appointments: %w", err)
	}
	return out, nil
}
