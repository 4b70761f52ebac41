package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tripnav/internal/model"
)

// Postgres is the durable store used when DATABASE_URL is set.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

// MigrateDir applies every .sql file in dir in lexical order.
func (p *Postgres) MigrateDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			return err
		}
		if _, err := p.db.Exec(string(b)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) CreateTrip(ctx context.Context, ownerID string, in model.TripInput) (model.Trip, error) {
	id := uuid.New().String()
	_, err := p.db.ExecContext(ctx, `INSERT INTO trips (id, owner_id, title, destination, start_date, end_date) VALUES ($1,$2,$3,$4,$5,$6)`,
		id, ownerID, in.Title, nullIfEmpty(in.Destination), nullIfEmpty(in.StartDate), nullIfEmpty(in.EndDate))
	if err != nil {
		return model.Trip{}, err
	}
	return model.Trip{ID: id, OwnerID: ownerID, Title: in.Title, Destination: in.Destination, StartDate: in.StartDate, EndDate: in.EndDate}, nil
}

func (p *Postgres) GetTrip(ctx context.Context, tripID string) (model.Trip, error) {
	var t model.Trip
	var dest, sd, ed sql.NullString
	row := p.db.QueryRowContext(ctx, `SELECT id::text, owner_id, title, destination, start_date, end_date FROM trips WHERE id=$1`, tripID)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &dest, &sd, &ed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return t, ErrNotFound
		}
		return t, err
	}
	t.Destination = dest.String
	t.StartDate = sd.String
	t.EndDate = ed.String
	return t, nil
}

func (p *Postgres) ListTrips(ctx context.Context, ownerID string) ([]model.Trip, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id::text, owner_id, title, destination, start_date, end_date FROM trips WHERE owner_id=$1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Trip{}
	for rows.Next() {
		var t model.Trip
		var dest, sd, ed sql.NullString
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &dest, &sd, &ed); err != nil {
			return nil, err
		}
		t.Destination = dest.String
		t.StartDate = sd.String
		t.EndDate = ed.String
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM trips WHERE id=$1`, tripID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const entryColumns = `id::text, trip_id::text, day, entry_time, kind, title, location, color, place_name, lat, lng, address, version`

func (p *Postgres) GetEntry(ctx context.Context, entryID string) (model.ItineraryEntry, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM itinerary_entries WHERE id=$1`, entryID)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ItineraryEntry{}, ErrNotFound
	}
	return e, err
}

func (p *Postgres) ListEntries(ctx context.Context, tripID string, day int) ([]model.ItineraryEntry, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM itinerary_entries WHERE trip_id=$1 AND day=$2 ORDER BY created_at`, tripID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ItineraryEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortByTime(out)
	return out, nil
}

func (p *Postgres) InsertEntry(ctx context.Context, e model.ItineraryEntry) (model.ItineraryEntry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Version = 0
	var name, addr any
	var lat, lng any
	if e.Place != nil {
		name, addr = nullIfEmpty(e.Place.Name), nullIfEmpty(e.Place.Address)
		lat, lng = e.Place.Lat, e.Place.Lng
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO itinerary_entries (id, trip_id, day, entry_time, kind, title, location, color, place_name, lat, lng, address, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,0)`,
		e.ID, e.TripID, e.Day, nullIfEmpty(e.Time), nullIfEmpty(e.Kind), e.Title, nullIfEmpty(e.Location), nullIfEmpty(e.Color), name, lat, lng, addr)
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	return e, nil
}

// UpdateEntry runs the compare-mutate-increment as one transaction: the row is
// locked, the version compared, and the write carries the version guard again
// so a mismatch can never commit.
func (p *Postgres) UpdateEntry(ctx context.Context, entryID string, expectedVersion int, mutate func(*model.ItineraryEntry)) (model.ItineraryEntry, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM itinerary_entries WHERE id=$1 FOR UPDATE`, entryID)
	cur, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ItineraryEntry{}, ErrNotFound
	}
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	if cur.Version != expectedVersion {
		return model.ItineraryEntry{}, ErrConflict
	}

	next := cur
	if next.Place != nil {
		pl := *next.Place
		next.Place = &pl
	}
	mutate(&next)
	next.ID = cur.ID
	next.TripID = cur.TripID

	var name, addr any
	var lat, lng any
	if next.Place != nil {
		name, addr = nullIfEmpty(next.Place.Name), nullIfEmpty(next.Place.Address)
		lat, lng = next.Place.Lat, next.Place.Lng
	}
	res, err := tx.ExecContext(ctx, `UPDATE itinerary_entries SET day=$1, entry_time=$2, kind=$3, title=$4, location=$5, color=$6, place_name=$7, lat=$8, lng=$9, address=$10, version=version+1
		WHERE id=$11 AND version=$12`,
		next.Day, nullIfEmpty(next.Time), nullIfEmpty(next.Kind), next.Title, nullIfEmpty(next.Location), nullIfEmpty(next.Color), name, lat, lng, addr, entryID, expectedVersion)
	if err != nil {
		return model.ItineraryEntry{}, err
	}
	if n, _ := res.RowsAffected(); n != 1 {
		return model.ItineraryEntry{}, ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return model.ItineraryEntry{}, err
	}
	next.Version = expectedVersion + 1
	return next, nil
}

func (p *Postgres) DeleteEntry(ctx context.Context, entryID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM itinerary_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.ItineraryEntry, error) {
	var e model.ItineraryEntry
	var entryTime, kind, location, color, name, addr sql.NullString
	var lat, lng sql.NullFloat64
	if err := row.Scan(&e.ID, &e.TripID, &e.Day, &entryTime, &kind, &e.Title, &location, &color, &name, &lat, &lng, &addr, &e.Version); err != nil {
		return e, err
	}
	e.Time = entryTime.String
	e.Kind = kind.String
	e.Location = location.String
	e.Color = color.String
	if name.Valid || addr.Valid || lat.Valid || lng.Valid {
		e.Place = &model.Place{Name: name.String, Lat: lat.Float64, Lng: lng.Float64, Address: addr.String}
	}
	return e, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
