/*
Package sqlite provides the SQLite-backed implementation of charter.Store.

PURPOSE:
  Production persistence for bookings, APA entries, expenses, score entries,
  and the crew roster. The same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - score_entries: no UPDATE or DELETE statement exists in this package
  - apa_entries:   DELETE only, never UPDATE
  - the reconciliation is written once; the completion UPDATE matches only
    rows that have no reconciliation yet

KEY TABLES:
  bookings:      Lifecycle state; reconciliation stored denormalized as JSON
                 on the row (1:1 and immutable, so no separate table)
  apa_entries:   Signed advance-payment movements
  expenses:      Collaborator-owned cash outflows
  score_entries: Append-only scoring ledger
  crew_members:  Roster, with an explicit position preserving roster order

WAL MODE:
  Opened with WAL and foreign keys on: multiple readers don't block, single
  writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/charter.db")
  if err != nil { log.Fatal(err) }
  defer store.Close()

SEE ALSO:
  - charter/store.go: Interface contracts
  - charter/store/memory.go: In-memory mirror for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/charter-engine/charter"
)

// Store implements charter.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ charter.Store = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS bookings (
		id TEXT PRIMARY KEY,
		season_id TEXT NOT NULL,
		arrival TEXT NOT NULL,
		departure TEXT NOT NULL,
		guest_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		tip TEXT,
		reconciliation_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookings_season
		ON bookings(season_id, arrival);

	CREATE TABLE IF NOT EXISTS apa_entries (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_apa_booking
		ON apa_entries(booking_id, created_at);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		amount TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		merchant TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_booking
		ON expenses(booking_id, created_at);

	-- Append-only scoring ledger. No UPDATE or DELETE statement anywhere in
	-- this package; the cascade fires only when an upcoming booking is
	-- hard-deleted, which removes its entries along with the rest of its rows.
	CREATE TABLE IF NOT EXISTS score_entries (
		id TEXT PRIMARY KEY,
		booking_id TEXT NOT NULL REFERENCES bookings(id) ON DELETE CASCADE,
		to_user TEXT NOT NULL,
		points INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		from_user TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scores_booking
		ON score_entries(booking_id, created_at);

	-- position preserves roster order; the scoring tie-break depends on it.
	CREATE TABLE IF NOT EXISTS crew_members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		captain INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BOOKINGS
// =============================================================================

func (s *Store) CreateBooking(ctx context.Context, b charter.Booking) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookings (id, season_id, arrival, departure, guest_count, status, notes, tip, reconciliation_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		string(b.ID), string(b.SeasonID), b.Arrival.String(), b.Departure.String(),
		b.GuestCount, string(b.Status), b.Notes, tipValue(b.Tip),
		b.CreatedAt.UTC().Format(time.RFC3339), b.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) GetBooking(ctx context.Context, id charter.BookingID) (charter.Booking, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, season_id, arrival, departure, guest_count, status, notes, tip, reconciliation_json, created_at, updated_at
		FROM bookings WHERE id = ?`, string(id))
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return charter.Booking{}, charter.ErrBookingNotFound
	}
	return b, err
}

func (s *Store) ListSeasonBookings(ctx context.Context, seasonID charter.SeasonID) ([]charter.Booking, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, season_id, arrival, departure, guest_count, status, notes, tip, reconciliation_json, created_at, updated_at
		FROM bookings WHERE season_id = ? ORDER BY arrival, id`, string(seasonID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []charter.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (s *Store) UpdateBooking(ctx context.Context, b charter.Booking) error {
	// reconciliation_json is deliberately untouched: immutable once written.
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings
		SET arrival = ?, departure = ?, guest_count = ?, status = ?, notes = ?, tip = ?, updated_at = ?
		WHERE id = ?`,
		b.Arrival.String(), b.Departure.String(), b.GuestCount, string(b.Status),
		b.Notes, tipValue(b.Tip), time.Now().UTC().Format(time.RFC3339), string(b.ID),
	)
	if err != nil {
		return err
	}
	return requireRow(res, charter.ErrBookingNotFound)
}

func (s *Store) SetStatus(ctx context.Context, id charter.BookingID, status charter.Status) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Format(time.RFC3339), string(id),
	)
	if err != nil {
		return err
	}
	return requireRow(res, charter.ErrBookingNotFound)
}

// Complete attaches the reconciliation and flips the status in one statement.
// The reconciliation_json IS NULL predicate is the at-most-once guard: a
// concurrent second completion matches zero rows.
func (s *Store) Complete(ctx context.Context, id charter.BookingID, rec charter.Reconciliation) error {
	payload, err := json.Marshal(reconciliationRow{
		ExpectedCash: rec.ExpectedCash.Value.String(),
		ActualCash:   rec.ActualCash.Value.String(),
		Difference:   rec.Difference.Value.String(),
		IsBalanced:   rec.IsBalanced,
		ReconciledBy: string(rec.ReconciledBy),
		ReconciledAt: rec.ReconciledAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE bookings SET status = ?, reconciliation_json = ?, updated_at = ?
		WHERE id = ? AND reconciliation_json IS NULL`,
		string(charter.StatusCompleted), string(payload),
		time.Now().UTC().Format(time.RFC3339), string(id),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Missing row or already reconciled; distinguish for the caller.
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM bookings WHERE id = ?`, string(id)).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return charter.ErrBookingNotFound
		}
		return charter.ErrAlreadyReconciled
	}
	return nil
}

func (s *Store) DeleteBooking(ctx context.Context, id charter.BookingID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, charter.ErrBookingNotFound)
}

// =============================================================================
// APA ENTRIES
// =============================================================================

func (s *Store) AddApaEntry(ctx context.Context, e charter.ApaEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO apa_entries (id, booking_id, amount, note, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(e.BookingID), e.Amount.Value.String(), e.Note,
		string(e.CreatedBy), e.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) DeleteApaEntry(ctx context.Context, id charter.EntryID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM apa_entries WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return requireRow(res, charter.ErrEntryNotFound)
}

func (s *Store) ListApaEntries(ctx context.Context, bookingID charter.BookingID) ([]charter.ApaEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, amount, note, created_by, created_at
		FROM apa_entries WHERE booking_id = ? ORDER BY created_at, id`, string(bookingID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []charter.ApaEntry
	for rows.Next() {
		var e charter.ApaEntry
		var id, bID, amount, createdBy, createdAt string
		if err := rows.Scan(&id, &bID, &amount, &e.Note, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		e.ID = charter.EntryID(id)
		e.BookingID = charter.BookingID(bID)
		e.CreatedBy = charter.UserID(createdBy)
		if e.Amount, err = charter.MoneyFromString(amount); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// =============================================================================
// EXPENSES
// =============================================================================

func (s *Store) AddExpense(ctx context.Context, e charter.Expense) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (id, booking_id, amount, category, merchant, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(e.BookingID), e.Amount.Value.String(), e.Category,
		e.Merchant, e.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListExpenses(ctx context.Context, bookingID charter.BookingID) ([]charter.Expense, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, amount, category, merchant, created_at
		FROM expenses WHERE booking_id = ? ORDER BY created_at, id`, string(bookingID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []charter.Expense
	for rows.Next() {
		var e charter.Expense
		var id, bID, amount, createdAt string
		if err := rows.Scan(&id, &bID, &amount, &e.Category, &e.Merchant, &createdAt); err != nil {
			return nil, err
		}
		e.ID = charter.EntryID(id)
		e.BookingID = charter.BookingID(bID)
		if e.Amount, err = charter.MoneyFromString(amount); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// =============================================================================
// SCORE ENTRIES - Append-only
// =============================================================================

func (s *Store) AppendScoreEntry(ctx context.Context, e charter.ScoreEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO score_entries (id, booking_id, to_user, points, reason, from_user, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(e.ID), string(e.BookingID), string(e.ToUser), e.Points, e.Reason,
		string(e.FromUser), e.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

func (s *Store) ListScoreEntries(ctx context.Context, bookingID charter.BookingID) ([]charter.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, booking_id, to_user, points, reason, from_user, created_at
		FROM score_entries WHERE booking_id = ? ORDER BY created_at, id`, string(bookingID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScoreEntries(rows)
}

func (s *Store) ListSeasonScoreEntries(ctx context.Context, seasonID charter.SeasonID) ([]charter.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT se.id, se.booking_id, se.to_user, se.points, se.reason, se.from_user, se.created_at
		FROM score_entries se
		JOIN bookings b ON b.id = se.booking_id
		WHERE b.season_id = ?
		ORDER BY se.created_at, se.id`, string(seasonID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanScoreEntries(rows)
}

// =============================================================================
// CREW
// =============================================================================

func (s *Store) AddCrewMember(ctx context.Context, m charter.CrewMember) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO crew_members (id, name, captain, position)
		VALUES (?, ?, ?, COALESCE((SELECT MAX(position) FROM crew_members), 0) + 1)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, captain = excluded.captain`,
		string(m.ID), m.Name, boolToInt(m.Captain),
	)
	return err
}

func (s *Store) GetCrewMember(ctx context.Context, id charter.UserID) (charter.CrewMember, error) {
	var m charter.CrewMember
	var mid string
	var captain int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, captain FROM crew_members WHERE id = ?`, string(id),
	).Scan(&mid, &m.Name, &captain)
	if err == sql.ErrNoRows {
		return charter.CrewMember{}, charter.ErrCrewNotFound
	}
	if err != nil {
		return charter.CrewMember{}, err
	}
	m.ID = charter.UserID(mid)
	m.Captain = captain != 0
	return m, nil
}

func (s *Store) ListCrew(ctx context.Context) ([]charter.CrewMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, captain FROM crew_members ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []charter.CrewMember
	for rows.Next() {
		var m charter.CrewMember
		var id string
		var captain int
		if err := rows.Scan(&id, &m.Name, &captain); err != nil {
			return nil, err
		}
		m.ID = charter.UserID(id)
		m.Captain = captain != 0
		result = append(result, m)
	}
	return result, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type reconciliationRow struct {
	ExpectedCash string `json:"expected_cash"`
	ActualCash   string `json:"actual_cash"`
	Difference   string `json:"difference"`
	IsBalanced   bool   `json:"is_balanced"`
	ReconciledBy string `json:"reconciled_by"`
	ReconciledAt string `json:"reconciled_at"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (charter.Booking, error) {
	var b charter.Booking
	var id, seasonID, arrival, departure, status, createdAt, updatedAt string
	var tip, recJSON sql.NullString

	err := row.Scan(&id, &seasonID, &arrival, &departure, &b.GuestCount, &status,
		&b.Notes, &tip, &recJSON, &createdAt, &updatedAt)
	if err != nil {
		return charter.Booking{}, err
	}

	b.ID = charter.BookingID(id)
	b.SeasonID = charter.SeasonID(seasonID)
	b.Status = charter.Status(status)
	if b.Arrival, err = charter.ParseDate(arrival); err != nil {
		return charter.Booking{}, err
	}
	if b.Departure, err = charter.ParseDate(departure); err != nil {
		return charter.Booking{}, err
	}
	if tip.Valid {
		m, err := charter.MoneyFromString(tip.String)
		if err != nil {
			return charter.Booking{}, err
		}
		b.Tip = &m
	}
	if recJSON.Valid {
		var r reconciliationRow
		if err := json.Unmarshal([]byte(recJSON.String), &r); err != nil {
			return charter.Booking{}, err
		}
		rec := charter.Reconciliation{
			BookingID:    b.ID,
			IsBalanced:   r.IsBalanced,
			ReconciledBy: charter.UserID(r.ReconciledBy),
		}
		if rec.ExpectedCash, err = charter.MoneyFromString(r.ExpectedCash); err != nil {
			return charter.Booking{}, err
		}
		if rec.ActualCash, err = charter.MoneyFromString(r.ActualCash); err != nil {
			return charter.Booking{}, err
		}
		if rec.Difference, err = charter.MoneyFromString(r.Difference); err != nil {
			return charter.Booking{}, err
		}
		if rec.ReconciledAt, err = time.Parse(time.RFC3339, r.ReconciledAt); err != nil {
			return charter.Booking{}, err
		}
		b.Reconciliation = &rec
	}
	if b.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return charter.Booking{}, err
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return charter.Booking{}, err
	}
	return b, nil
}

func scanScoreEntries(rows *sql.Rows) ([]charter.ScoreEntry, error) {
	var result []charter.ScoreEntry
	for rows.Next() {
		var e charter.ScoreEntry
		var id, bID, toUser, fromUser, createdAt string
		if err := rows.Scan(&id, &bID, &toUser, &e.Points, &e.Reason, &fromUser, &createdAt); err != nil {
			return nil, err
		}
		e.ID = charter.EntryID(id)
		e.BookingID = charter.BookingID(bID)
		e.ToUser = charter.UserID(toUser)
		e.FromUser = charter.UserID(fromUser)
		var err error
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func tipValue(tip *charter.Money) any {
	if tip == nil {
		return nil
	}
	return tip.Value.String()
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
