// Package repo contains all database access logic for the rail-log API.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/rail-log/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RideRepo defines the persistence operations for ride records. All reads
// and writes are scoped to the owning user. The service layer depends on
// this interface, not the Postgres implementation, so it can be unit-tested
// with a mock.
type RideRepo interface {
	// Create inserts a new ride and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error)

	// GetByID retrieves a single ride by primary key, scoped to userID.
	// Returns domain.ErrNotFound if no such ride exists for that user.
	GetByID(ctx context.Context, userID, id uuid.UUID) (domain.RideRecord, error)

	// List returns one page of the user's rides ordered by ride_date
	// descending, then departure_time ascending, then created_at ascending.
	// A non-empty search narrows the page to rides whose text fields
	// contain it (case-insensitive).
	List(ctx context.Context, userID uuid.UUID, search string, p domain.PaginationParams) ([]domain.RideRecord, error)

	// Count returns the total number of rides the same List call would match.
	Count(ctx context.Context, userID uuid.UUID, search string) (int64, error)

	// History returns the user's full ride list in List order, for building
	// the color index and autocomplete suggestions.
	History(ctx context.Context, userID uuid.UUID) ([]domain.RideRecord, error)

	// Latest returns the user's most recently logged ride: latest ride_date,
	// then latest departure_time, then latest created_at. Note this inverts
	// the within-day direction of the List order, which sorts departures
	// ascending for display. Returns domain.ErrNotFound when the user has
	// no rides.
	Latest(ctx context.Context, userID uuid.UUID) (domain.RideRecord, error)

	// Update overwrites the mutable fields of an existing ride and returns
	// the updated record. Returns domain.ErrNotFound if it does not exist.
	Update(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error)

	// Delete removes a ride by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// pgRideRepo is the Postgres implementation of RideRepo.
type pgRideRepo struct {
	db db
}

// NewRideRepo constructs a RideRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRideRepo(db db) RideRepo {
	return &pgRideRepo{db: db}
}

// rideColumns is the select list shared by every query, in scanRide order.
const rideColumns = `id, user_id, ride_date, railway_company, line_name, service_type,
		destination, train_number, operation_number, formation_number, car_number,
		departure_station, arrival_station, departure_time, arrival_time,
		service_color, is_delayed, delay_minutes, memo, segments, created_at, updated_at`

// listOrder matches how the history view groups and renders rides: newest
// day first, within a day in boarding order.
const listOrder = `ORDER BY ride_date DESC, departure_time ASC, created_at ASC`

// Create inserts a new ride row and returns the full persisted record.
func (r *pgRideRepo) Create(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error) {
	q := `
		INSERT INTO rides (user_id, ride_date, railway_company, line_name, service_type,
			destination, train_number, operation_number, formation_number, car_number,
			departure_station, arrival_station, departure_time, arrival_time,
			service_color, is_delayed, delay_minutes, memo, segments)
		VALUES (@user_id, @ride_date, @railway_company, @line_name, @service_type,
			@destination, @train_number, @operation_number, @formation_number, @car_number,
			@departure_station, @arrival_station, @departure_time, @arrival_time,
			@service_color, @is_delayed, @delay_minutes, @memo, @segments)
		RETURNING ` + rideColumns

	args, err := rideArgs(rec)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("repo.RideRepo.Create: %w", err)
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRide(row)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("repo.RideRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a ride by primary key, scoped to its owner.
func (r *pgRideRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (domain.RideRecord, error) {
	q := `SELECT ` + rideColumns + ` FROM rides WHERE id = @id AND user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	result, err := scanRide(row)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("repo.RideRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns one page of rides matching the optional search.
func (r *pgRideRepo) List(ctx context.Context, userID uuid.UUID, search string, p domain.PaginationParams) ([]domain.RideRecord, error) {
	q := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = @user_id` +
		searchClause(search) + ` ` + listOrder + ` LIMIT @limit OFFSET @offset`

	args := pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	}
	addSearchArg(args, search)

	return r.queryRides(ctx, "List", q, args)
}

// Count returns the number of rides List would match across all pages.
func (r *pgRideRepo) Count(ctx context.Context, userID uuid.UUID, search string) (int64, error) {
	q := `SELECT count(*) FROM rides WHERE user_id = @user_id` + searchClause(search)

	args := pgx.NamedArgs{"user_id": userID}
	addSearchArg(args, search)

	var n int64
	if err := r.db.QueryRow(ctx, q, args).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.RideRepo.Count: %w", err)
	}
	return n, nil
}

// History returns all rides of a user in List order.
func (r *pgRideRepo) History(ctx context.Context, userID uuid.UUID) ([]domain.RideRecord, error) {
	q := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = @user_id ` + listOrder

	return r.queryRides(ctx, "History", q, pgx.NamedArgs{"user_id": userID})
}

// Latest returns the user's most recent ride, for prefilling a new draft.
func (r *pgRideRepo) Latest(ctx context.Context, userID uuid.UUID) (domain.RideRecord, error) {
	q := `SELECT ` + rideColumns + ` FROM rides WHERE user_id = @user_id
		ORDER BY ride_date DESC, departure_time DESC, created_at DESC LIMIT 1`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"user_id": userID})
	result, err := scanRide(row)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("repo.RideRepo.Latest: %w", err)
	}
	return result, nil
}

// Update overwrites the mutable fields of a ride and returns the updated record.
func (r *pgRideRepo) Update(ctx context.Context, rec domain.RideRecord) (domain.RideRecord, error) {
	q := `
		UPDATE rides
		SET ride_date         = @ride_date,
		    railway_company   = @railway_company,
		    line_name         = @line_name,
		    service_type      = @service_type,
		    destination       = @destination,
		    train_number      = @train_number,
		    operation_number  = @operation_number,
		    formation_number  = @formation_number,
		    car_number        = @car_number,
		    departure_station = @departure_station,
		    arrival_station   = @arrival_station,
		    departure_time    = @departure_time,
		    arrival_time      = @arrival_time,
		    service_color     = @service_color,
		    is_delayed        = @is_delayed,
		    delay_minutes     = @delay_minutes,
		    memo              = @memo,
		    segments          = @segments,
		    updated_at        = now()
		WHERE id = @id AND user_id = @user_id
		RETURNING ` + rideColumns

	args, err := rideArgs(rec)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("repo.RideRepo.Update: %w", err)
	}
	args["id"] = rec.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRide(row)
	if err != nil {
		return domain.RideRecord{}, fmt.Errorf("repo.RideRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a ride by primary key, scoped to its owner.
func (r *pgRideRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	q := `DELETE FROM rides WHERE id = @id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.RideRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RideRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgRideRepo) queryRides(ctx context.Context, op, q string, args pgx.NamedArgs) ([]domain.RideRecord, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.RideRepo.%s: %w", op, err)
	}
	defer rows.Close()

	var rides []domain.RideRecord
	for rows.Next() {
		rec, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RideRepo.%s: scan: %w", op, err)
		}
		rides = append(rides, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RideRepo.%s: rows: %w", op, err)
	}

	return rides, nil
}

// searchClause appends the case-insensitive substring filter over every
// searchable text field. Mirrors the history view's client-side filter.
func searchClause(search string) string {
	if search == "" {
		return ""
	}
	fields := []string{
		"railway_company", "line_name", "service_type", "destination",
		"train_number", "formation_number", "departure_station",
		"arrival_station", "memo",
	}
	for i, f := range fields {
		fields[i] = f + " ILIKE @search"
	}
	return ` AND (` + strings.Join(fields, " OR ") + `)`
}

func addSearchArg(args pgx.NamedArgs, search string) {
	if search != "" {
		escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(search)
		args["search"] = "%" + escaped + "%"
	}
}

// rideArgs maps a record to the named insert/update arguments.
// Segments always persist as a structured jsonb array; the string-encoded
// legacy shape is accepted on read only.
func rideArgs(rec domain.RideRecord) (pgx.NamedArgs, error) {
	segs := rec.Segments
	if segs == nil {
		segs = domain.Segments{}
	}
	segJSON, err := json.Marshal(segs)
	if err != nil {
		return nil, fmt.Errorf("marshal segments: %w", err)
	}

	return pgx.NamedArgs{
		"user_id":           rec.UserID,
		"ride_date":         rec.RideDate,
		"railway_company":   rec.RailwayCompany,
		"line_name":         rec.LineName,
		"service_type":      rec.ServiceType,
		"destination":       rec.Destination,
		"train_number":      rec.TrainNumber,
		"operation_number":  rec.OperationNumber,
		"formation_number":  rec.FormationNumber,
		"car_number":        rec.CarNumber,
		"departure_station": rec.DepartureStation,
		"arrival_station":   rec.ArrivalStation,
		"departure_time":    rec.DepartureTime,
		"arrival_time":      rec.ArrivalTime,
		"service_color":     rec.Color.String(),
		"is_delayed":        rec.Delayed,
		"delay_minutes":     rec.DelayMinutes,
		"memo":              rec.Memo,
		"segments":          segJSON,
	}, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanRide to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanRide maps a single database row into a domain.RideRecord.
// Malformed segment data degrades to an empty segment list instead of
// failing the whole row.
func scanRide(s scanner) (domain.RideRecord, error) {
	var (
		rec      domain.RideRecord
		id       pgtype.UUID
		userID   pgtype.UUID
		rideDate pgtype.Date
		color    string
		segRaw   []byte
	)

	err := s.Scan(&id, &userID, &rideDate, &rec.RailwayCompany, &rec.LineName,
		&rec.ServiceType, &rec.Destination, &rec.TrainNumber, &rec.OperationNumber,
		&rec.FormationNumber, &rec.CarNumber, &rec.DepartureStation, &rec.ArrivalStation,
		&rec.DepartureTime, &rec.ArrivalTime, &color, &rec.Delayed, &rec.DelayMinutes,
		&rec.Memo, &segRaw, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.RideRecord{}, domain.ErrNotFound
		}
		return domain.RideRecord{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	rec.UserID = uuid.UUID(userID.Bytes)
	rec.RideDate = rideDate.Time
	rec.Color = domain.ParseColor(color)
	if len(segRaw) > 0 {
		// Segments.UnmarshalJSON never fails; bad data becomes "no segments".
		_ = json.Unmarshal(segRaw, &rec.Segments)
	}

	return rec, nil
}
