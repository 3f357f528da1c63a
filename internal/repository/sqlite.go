package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nwang/babypoll/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite works best with single connection
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}

	// Run migrations
	if err := repo.migrate(); err != nil {
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			pin TEXT NOT NULL,
			correct_option TEXT,
			deadline DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL,
			nickname TEXT NOT NULL UNIQUE,
			contact_info TEXT NOT NULL UNIQUE,
			has_voted BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (event_id) REFERENCES events(id)
		)`,
		`CREATE TABLE IF NOT EXISTS ballots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL,
			participant_id INTEGER NOT NULL UNIQUE,
			option_chosen TEXT NOT NULL,
			cast_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (event_id) REFERENCES events(id),
			FOREIGN KEY (participant_id) REFERENCES participants(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_participants_event ON participants(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_event ON ballots(event_id)`,
		`CREATE INDEX IF NOT EXISTS idx_ballots_option ON ballots(event_id, option_chosen)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

// mapUniqueViolation translates sqlite UNIQUE constraint failures into the
// repository's sentinel errors so the service layer never sees driver errors
// for expected conflicts.
func mapUniqueViolation(err error) error {
	var sqliteErr sqlite3.Error
	if !stderrors.As(err, &sqliteErr) || sqliteErr.ExtendedCode != sqlite3.ErrConstraintUnique {
		return err
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "participants.nickname"):
		return ErrDuplicateNickname
	case strings.Contains(msg, "participants.contact_info"):
		return ErrDuplicateContact
	case strings.Contains(msg, "ballots.participant_id"):
		return ErrAlreadyVoted
	}
	return err
}

// ==================== Event Methods ====================

// EnsureEvent provisions the live event if none exists and returns its ID.
// An already-provisioned event is returned unchanged, so startup is idempotent.
func (r *Repository) EnsureEvent(ctx context.Context, pin string, deadline *time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT id FROM events ORDER BY id LIMIT 1`).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO events (pin, deadline) VALUES (?, ?)`, pin, deadline)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// GetEvent retrieves a voting event by ID
func (r *Repository) GetEvent(ctx context.Context, eventID int64) (*models.VotingEvent, error) {
	return r.scanEvent(r.db.QueryRowContext(ctx,
		`SELECT id, pin, correct_option, deadline, created_at FROM events WHERE id = ?`, eventID))
}

// ActiveEvent returns the live event. There is exactly one per deployment;
// callers treat ErrNotFound here as a fatal configuration fault.
func (r *Repository) ActiveEvent(ctx context.Context) (*models.VotingEvent, error) {
	return r.scanEvent(r.db.QueryRowContext(ctx,
		`SELECT id, pin, correct_option, deadline, created_at FROM events ORDER BY id LIMIT 1`))
}

func (r *Repository) scanEvent(row *sql.Row) (*models.VotingEvent, error) {
	var event models.VotingEvent
	var correctOption sql.NullString
	var deadline sql.NullTime
	err := row.Scan(&event.ID, &event.PIN, &correctOption, &deadline, &event.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if correctOption.Valid {
		opt := models.Option(correctOption.String)
		event.CorrectOption = &opt
	}
	if deadline.Valid {
		d := deadline.Time
		event.Deadline = &d
	}
	return &event, nil
}

// SetCorrectOption records the declared correct option. Repeated calls
// overwrite the previous value.
func (r *Repository) SetCorrectOption(ctx context.Context, eventID int64, option models.Option) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET correct_option = ? WHERE id = ?`, string(option), eventID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ==================== Participant Methods ====================

// CreateParticipant registers a new participant. The existence checks and the
// insert run in one transaction; the UNIQUE constraints on nickname and
// contact_info are the backstop, so two concurrent registrations for the same
// identity can never both succeed.
func (r *Repository) CreateParticipant(ctx context.Context, eventID int64, nickname, contactInfo string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	// Checked in order so the caller sees the nickname conflict first when
	// both values collide.
	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM participants WHERE nickname = ?)`, nickname).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateNickname
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM participants WHERE contact_info = ?)`, contactInfo).Scan(&exists); err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateContact
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO participants (event_id, nickname, contact_info) VALUES (?, ?, ?)`,
		eventID, nickname, contactInfo)
	if err != nil {
		return 0, mapUniqueViolation(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, mapUniqueViolation(err)
	}
	return id, nil
}

// GetParticipant retrieves a participant by ID
func (r *Repository) GetParticipant(ctx context.Context, id int64) (*models.Participant, error) {
	var p models.Participant
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, nickname, contact_info, has_voted, created_at
		 FROM participants WHERE id = ?`, id).
		Scan(&p.ID, &p.EventID, &p.Nickname, &p.ContactInfo, &p.HasVoted, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListParticipants returns all participants for an event, newest first
func (r *Repository) ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, nickname, contact_info, has_voted, created_at
		 FROM participants WHERE event_id = ? ORDER BY created_at DESC, id DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.Nickname, &p.ContactInfo, &p.HasVoted, &p.CreatedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// CountParticipants returns total and voted participant counts for an event
func (r *Repository) CountParticipants(ctx context.Context, eventID int64) (total, voted int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(has_voted), 0) FROM participants WHERE event_id = ?`, eventID).
		Scan(&total, &voted)
	return total, voted, err
}

// ==================== Ballot Methods ====================

// CreateBallot records a participant's ballot and flips has_voted in a single
// transaction. The guarded UPDATE is the anti-double-voting mechanism: only
// one concurrent caster can observe has_voted=0, and the UNIQUE constraint on
// ballots.participant_id backstops it.
func (r *Repository) CreateBallot(ctx context.Context, eventID, participantID int64, option models.Option) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE participants SET has_voted = 1 WHERE id = ? AND has_voted = 0`, participantID)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		// Either the participant doesn't exist or they have already voted.
		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM participants WHERE id = ?)`, participantID).Scan(&exists); err != nil {
			return 0, err
		}
		if !exists {
			return 0, ErrNotFound
		}
		return 0, ErrAlreadyVoted
	}

	result, err = tx.ExecContext(ctx,
		`INSERT INTO ballots (event_id, participant_id, option_chosen) VALUES (?, ?, ?)`,
		eventID, participantID, string(option))
	if err != nil {
		return 0, mapUniqueViolation(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, mapUniqueViolation(err)
	}
	return id, nil
}

// GetBallotByParticipant returns the participant's single ballot, if any
func (r *Repository) GetBallotByParticipant(ctx context.Context, participantID int64) (*models.Ballot, error) {
	var b models.Ballot
	var option string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, event_id, participant_id, option_chosen, cast_at
		 FROM ballots WHERE participant_id = ?`, participantID).
		Scan(&b.ID, &b.EventID, &b.ParticipantID, &option, &b.CastAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	b.OptionChosen = models.Option(option)
	return &b, nil
}

// TallyBallots returns ballot counts grouped by option for an event.
// Options with no ballots are absent from the map; the results service
// zero-fills over the fixed option set.
func (r *Repository) TallyBallots(ctx context.Context, eventID int64) (map[models.Option]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT option_chosen, COUNT(*) FROM ballots WHERE event_id = ? GROUP BY option_chosen`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Option]int)
	for rows.Next() {
		var option string
		var count int
		if err := rows.Scan(&option, &count); err != nil {
			return nil, err
		}
		counts[models.Option(option)] = count
	}
	return counts, rows.Err()
}
