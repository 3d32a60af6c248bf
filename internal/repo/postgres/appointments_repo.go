package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linapure/salon-api/internal/domain"
)

type AppointmentRepository interface {
	Create(ctx context.Context, userID int64, serviceType domain.ServiceType, startAt time.Time, durationMin int, notes string) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	Update(ctx context.Context, id int64, patch AppointmentUpdate) (*domain.Appointment, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// AppointmentUpdate carries resolved partial fields for an update. Nil
// means the column keeps its value.
type AppointmentUpdate struct {
	UserID      *int64
	Type        *domain.ServiceType
	StartAt     *time.Time
	DurationMin *int
	Notes       *string
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const apptCols = `a.id, a.user_id, a.service_type, a.start_at, a.duration_min, a.notes,
a.created_at, a.updated_at, u.name, u.phone`

const apptJoin = ` FROM appointments a JOIN users u ON u.id = a.user_id`

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var apt domain.Appointment
	err := row.Scan(
		&apt.ID, &apt.UserID, &apt.Type, &apt.StartAt, &apt.DurationMin, &apt.Notes,
		&apt.CreatedAt, &apt.UpdatedAt, &apt.ClientName, &apt.ClientPhone,
	)
	if err != nil {
		return nil, err
	}
	return &apt, nil
}

func (r *appointmentRepository) Create(ctx context.Context, userID int64, serviceType domain.ServiceType, startAt time.Time, durationMin int, notes string) (*domain.Appointment, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO appointments (user_id, service_type, start_at, duration_min, notes)
			VALUES ($1,$2,$3,$4,$5)
			RETURNING id, user_id, service_type, start_at, duration_min, notes, created_at, updated_at
		)
		SELECT a.id, a.user_id, a.service_type, a.start_at, a.duration_min, a.notes,
		       a.created_at, a.updated_at, u.name, u.phone
		FROM inserted a JOIN users u ON u.id = a.user_id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAppointment(r.pool.QueryRow(ctx, q, userID, serviceType, startAt, durationMin, notes))
}

func (r *appointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	const q = `SELECT ` + apptCols + apptJoin + ` WHERE a.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	apt, err := scanAppointment(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return apt, err
}

// ListBetween returns appointments with start_at in [from, to), ascending.
func (r *appointmentRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	const q = `SELECT ` + apptCols + apptJoin + ` WHERE a.start_at >= $1 AND a.start_at < $2 ORDER BY a.start_at ASC`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []domain.Appointment
	for rows.Next() {
		var apt domain.Appointment
		if err := rows.Scan(
			&apt.ID, &apt.UserID, &apt.Type, &apt.StartAt, &apt.DurationMin, &apt.Notes,
			&apt.CreatedAt, &apt.UpdatedAt, &apt.ClientName, &apt.ClientPhone,
		); err != nil {
			return nil, err
		}
		appts = append(appts, apt)
	}
	return appts, rows.Err()
}

func (r *appointmentRepository) Update(ctx context.Context, id int64, patch AppointmentUpdate) (*domain.Appointment, error) {
	const q = `
		WITH updated AS (
			UPDATE appointments
			SET
				user_id      = COALESCE($2, user_id),
				service_type = COALESCE($3, service_type),
				start_at     = COALESCE($4, start_at),
				duration_min = COALESCE($5, duration_min),
				notes        = COALESCE($6, notes),
				updated_at   = now()
			WHERE id=$1
			RETURNING id, user_id, service_type, start_at, duration_min, notes, created_at, updated_at
		)
		SELECT a.id, a.user_id, a.service_type, a.start_at, a.duration_min, a.notes,
		       a.created_at, a.updated_at, u.name, u.phone
		FROM updated a JOIN users u ON u.id = a.user_id`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	apt, err := scanAppointment(r.pool.QueryRow(ctx, q,
		id, patch.UserID, patch.Type, patch.StartAt, patch.DurationMin, patch.Notes,
	))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return apt, err
}

func (r *appointmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM appointments WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
