package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jumparoo/bounce-bookings/internal/domain"
)

type BookingRepo interface {
	Submit(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error)
	List(ctx context.Context, limit, offset int) ([]domain.Booking, error)
	ListByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error)
	Cancel(ctx context.Context, bookingID string) (bool, error)
	CountActiveOn(ctx context.Context, productRef string, date time.Time) (int, error)
}

type BookingRepoImpl struct{ pool *pgxpool.Pool }

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepoImpl { return &BookingRepoImpl{pool: pool} }

const bookingCols = `booking_id,
customer_name, customer_phone, customer_email,
product_id, product_name,
booking_date, booking_time,
duration_id, duration_label, duration_price,
address, status, total_amount,
created_at, updated_at`

const submitAttempts = 3

// Submit stores a finalized booking. The caller's booking id is a
// candidate only: on a collision the store regenerates it, so the
// returned record is authoritative.
func (r *BookingRepoImpl) Submit(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	const q = `INSERT INTO bookings (
    booking_id,
    customer_name, customer_phone, customer_email,
    product_id, product_name,
    booking_date, booking_time,
    duration_id, duration_label, duration_price,
    address, status, total_amount
  ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
  RETURNING ` + bookingCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	bookingID := b.BookingID
	for attempt := 0; attempt < submitAttempts; attempt++ {
		var saved domain.Booking
		err := r.pool.QueryRow(ctx, q, bookingID,
			b.Customer.Name, b.Customer.Phone, b.Customer.Email,
			b.Product.ID, b.Product.Name,
			b.Date, b.Time,
			b.Duration.ID, b.Duration.Label, b.Duration.Price,
			b.Address, b.Status, b.TotalAmount,
		).Scan(
			&saved.BookingID,
			&saved.Customer.Name, &saved.Customer.Phone, &saved.Customer.Email,
			&saved.Product.ID, &saved.Product.Name,
			&saved.Date, &saved.Time,
			&saved.Duration.ID, &saved.Duration.Label, &saved.Duration.Price,
			&saved.Address, &saved.Status, &saved.TotalAmount,
			&saved.CreatedAt, &saved.UpdatedAt,
		)
		if err == nil {
			return &saved, nil
		}
		if isUniqueViolation(err) {
			bookingID = domain.NewBookingID(time.Now())
			continue
		}
		return nil, err
	}
	return nil, errors.New("could not assign a unique booking id")
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *BookingRepoImpl) GetByBookingID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE booking_id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var b domain.Booking
	err := r.pool.QueryRow(ctx, q, bookingID).Scan(
		&b.BookingID,
		&b.Customer.Name, &b.Customer.Phone, &b.Customer.Email,
		&b.Product.ID, &b.Product.Name,
		&b.Date, &b.Time,
		&b.Duration.ID, &b.Duration.Label, &b.Duration.Price,
		&b.Address, &b.Status, &b.TotalAmount,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepoImpl) List(ctx context.Context, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + bookingCols + ` FROM bookings ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows, limit)
}

func (r *BookingRepoImpl) ListByStatus(ctx context.Context, status domain.BookingStatus, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE status=$1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBookings(rows, limit)
}

func scanBookings(rows pgx.Rows, capacity int) ([]domain.Booking, error) {
	bs := make([]domain.Booking, 0, capacity)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(
			&b.BookingID,
			&b.Customer.Name, &b.Customer.Phone, &b.Customer.Email,
			&b.Product.ID, &b.Product.Name,
			&b.Date, &b.Time,
			&b.Duration.ID, &b.Duration.Label, &b.Duration.Price,
			&b.Address, &b.Status, &b.TotalAmount,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bs = append(bs, b)
	}
	return bs, rows.Err()
}

func (r *BookingRepoImpl) Cancel(ctx context.Context, bookingID string) (bool, error) {
	const q = `UPDATE bookings SET status='Cancelled', updated_at=now() WHERE booking_id=$1 AND status <> 'Cancelled'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	ct, err := r.pool.Exec(ctx, q, bookingID)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// CountActiveOn reports how many non-cancelled bookings hold the given
// product on the given date. Backs the availability check.
func (r *BookingRepoImpl) CountActiveOn(ctx context.Context, productRef string, date time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM bookings WHERE product_id=$1 AND booking_date=$2 AND status <> 'Cancelled'`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var count int
	if err := r.pool.QueryRow(ctx, q, productRef, date).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ BookingRepo = (*BookingRepoImpl)(nil)
