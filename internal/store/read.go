package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/rtype/internal/trace"
)

// Record is a stored event with its content-addressed id.
type Record struct {
	ID string `json:"id"`
	trace.Event
}

const eventColumns = `id, session_id, seq, op, receiver_type, member, arg_types, outcome, error_code`

// ReadEvents returns the events of a session in seq order. It returns an
// empty slice, not nil, for an unknown session.
func (s *Store) ReadEvents(ctx context.Context, session string) ([]Record, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE session_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session)
}

// ReadFailures returns the failed events of a session in seq order.
func (s *Store) ReadFailures(ctx context.Context, session string) ([]Record, error) {
	return s.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM events
		WHERE session_id = ? AND outcome = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, session, trace.OutcomeError)
}

// ReadEvent returns one event by id. Returns sql.ErrNoRows if absent.
func (s *Store) ReadEvent(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ReadSessions lists every session with its event count, oldest first.
// Session ids are UUIDv7, so id order is creation order.
func (s *Store) ReadSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.tool_version, s.schema_version, COUNT(e.id)
		FROM sessions s
		LEFT JOIN events e ON e.session_id = s.id
		GROUP BY s.id
		ORDER BY s.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Label, &sess.ToolVersion, &sess.SchemaVersion, &sess.Events); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// LastSeq returns the highest seq recorded for a session, 0 if none.
func (s *Store) LastSeq(ctx context.Context, session string) (int64, error) {
	var seq sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(seq) FROM events WHERE session_id = ?`, session).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) queryEvents(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (Record, error) {
	var (
		rec      Record
		op       string
		argTypes string
	)
	err := row.Scan(
		&rec.ID,
		&rec.Session,
		&rec.Seq,
		&op,
		&rec.ReceiverType,
		&rec.Member,
		&argTypes,
		&rec.Outcome,
		&rec.ErrorCode,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan event: %w", err)
	}
	rec.Op = trace.Op(op)
	rec.ArgTypes, err = unmarshalArgTypes(argTypes)
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}
