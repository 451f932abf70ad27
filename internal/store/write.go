package store

import (
	"context"
	"fmt"

	"github.com/roach88/rtype/internal/ir"
	"github.com/roach88/rtype/internal/trace"
)

// Session describes one recorded runtime session.
type Session struct {
	ID            string `json:"id"`
	Label         string `json:"label,omitempty"`
	ToolVersion   string `json:"tool_version"`
	SchemaVersion string `json:"schema_version"`
	Events        int    `json:"events"`
}

// WriteSession registers a session. Registering an existing session is a
// no-op, so the first label wins.
func (s *Store) WriteSession(ctx context.Context, id, label string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, label, tool_version, schema_version)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, id, label, ir.ToolVersion, ir.SchemaVersion)
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// WriteEvent appends a dispatch event, registering its session if needed.
// The event id is content addressed; a duplicate write is ignored.
func (s *Store) WriteEvent(ctx context.Context, e trace.Event) error {
	id, err := ir.EventID(e.Session, e.Seq, e.Body())
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	argTypes, err := marshalArgTypes(e.ArgTypes)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := s.WriteSession(ctx, e.Session, ""); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events
		(id, session_id, seq, op, receiver_type, member, arg_types, outcome, error_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		id,
		e.Session,
		e.Seq,
		string(e.Op),
		e.ReceiverType,
		e.Member,
		argTypes,
		e.Outcome,
		e.ErrorCode,
	)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Record implements trace.Recorder.
func (s *Store) Record(e trace.Event) error {
	return s.WriteEvent(context.Background(), e)
}
