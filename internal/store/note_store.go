package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"server-notes/internal/goerrors"
	"server-notes/internal/interfaces"
	"server-notes/internal/schemas"
)

const noteColumns = "note_id, owner_id, title, content, tags, is_pinned, created_at, updated_at"

// likeEscaper escapes the ILIKE wildcards so search text is matched literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NoteChanges holds the fields of a partial note update. Nil fields and empty title or content are left untouched.
type NoteChanges struct {
	Title   *string
	Content *string
	Tags    []string
}

// IsEmpty reports whether the update would not change anything.
func (c NoteChanges) IsEmpty() bool {
	return isBlank(c.Title) && isBlank(c.Content) && c.Tags == nil
}

func isBlank(value *string) bool {
	return value == nil || *value == ""
}

// NoteStore persists notes. Every operation is scoped to the owner, notes of other owners are never found.
type NoteStore interface {
	Create(ctx context.Context, note *schemas.Note) error
	List(ctx context.Context, ownerID string) ([]*schemas.Note, error)
	Get(ctx context.Context, ownerID string, noteID uuid.UUID) (*schemas.Note, error)
	Update(ctx context.Context, ownerID string, noteID uuid.UUID, changes NoteChanges) (*schemas.Note, error)
	Delete(ctx context.Context, ownerID string, noteID uuid.UUID) error
	TogglePin(ctx context.Context, ownerID string, noteID uuid.UUID) (*schemas.Note, error)
	Search(ctx context.Context, ownerID, query string) ([]*schemas.Note, error)
}

// PostgresNoteStore implements NoteStore on the notes table.
type PostgresNoteStore struct {
	Pool    interfaces.PgxPoolIface
	Timeout time.Duration
}

// NewNoteStore returns a NoteStore whose calls give up after timeout.
func NewNoteStore(pool interfaces.PgxPoolIface, timeout time.Duration) NoteStore {
	return &PostgresNoteStore{Pool: pool, Timeout: timeout}
}

func scanNote(row pgx.Row) (*schemas.Note, error) {
	var rawId string
	note := &schemas.Note{}
	if err := row.Scan(&rawId, &note.OwnerID, &note.Title, &note.Content, &note.Tags, &note.IsPinned,
		&note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawId)
	if err != nil {
		return nil, err
	}
	note.ID = id
	if note.Tags == nil {
		note.Tags = []string{}
	}
	return note, nil
}

// Create inserts note, assigning its id and timestamps.
func (s *PostgresNoteStore) Create(ctx context.Context, note *schemas.Note) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	note.ID = uuid.New()
	note.CreatedAt = time.Now()
	note.UpdatedAt = note.CreatedAt
	if note.Tags == nil {
		note.Tags = []string{}
	}

	queryString := "INSERT INTO notes (" + noteColumns + ") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)"
	if _, err := s.Pool.Exec(queryCtx, queryString, note.ID, note.OwnerID, note.Title, note.Content, note.Tags,
		note.IsPinned, note.CreatedAt, note.UpdatedAt); err != nil {
		return storeError(err, nil)
	}
	return nil
}

func (s *PostgresNoteStore) queryNotes(ctx context.Context, queryString string, args ...interface{}) ([]*schemas.Note, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	rows, err := s.Pool.Query(queryCtx, queryString, args...)
	if err != nil {
		return nil, storeError(err, nil)
	}
	defer rows.Close()

	notes := make([]*schemas.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storeError(err, nil)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, nil)
	}
	return notes, nil
}

// List returns the notes of ownerID, pinned notes first and newest first.
func (s *PostgresNoteStore) List(ctx context.Context, ownerID string) ([]*schemas.Note, error) {
	queryString := "SELECT " + noteColumns + " FROM notes WHERE owner_id = $1 ORDER BY is_pinned DESC, created_at DESC"
	return s.queryNotes(ctx, queryString, ownerID)
}

// Search returns the notes of ownerID whose title or content contains query, ignoring case,
// or that carry query as a tag.
func (s *PostgresNoteStore) Search(ctx context.Context, ownerID, query string) ([]*schemas.Note, error) {
	queryString := `SELECT ` + noteColumns + ` FROM notes
					WHERE owner_id = $1 AND (title ILIKE $2 ESCAPE '\' OR content ILIKE $2 ESCAPE '\' OR $3 = ANY(tags))
					ORDER BY is_pinned DESC, created_at DESC`
	pattern := "%" + likeEscaper.Replace(query) + "%"
	return s.queryNotes(ctx, queryString, ownerID, pattern, query)
}

func (s *PostgresNoteStore) Get(ctx context.Context, ownerID string, noteID uuid.UUID) (*schemas.Note, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	queryString := "SELECT " + noteColumns + " FROM notes WHERE note_id = $1 AND owner_id = $2"
	note, err := scanNote(s.Pool.QueryRow(queryCtx, queryString, noteID, ownerID))
	if err != nil {
		return nil, storeError(err, goerrors.NoteNotFound)
	}
	return note, nil
}

// Update applies changes to the note and returns the updated note. Empty changes report NoChanges.
func (s *PostgresNoteStore) Update(ctx context.Context, ownerID string, noteID uuid.UUID, changes NoteChanges) (*schemas.Note, error) {
	if changes.IsEmpty() {
		return nil, goerrors.NoChanges
	}

	assignments := []string{"updated_at = $1"}
	queryArgs := []interface{}{time.Now()}
	addAssignment := func(column string, value interface{}) {
		queryArgs = append(queryArgs, value)
		assignments = append(assignments, fmt.Sprintf("%s = $%d", column, len(queryArgs)))
	}

	if !isBlank(changes.Title) {
		addAssignment("title", *changes.Title)
	}
	if !isBlank(changes.Content) {
		addAssignment("content", *changes.Content)
	}
	if changes.Tags != nil {
		addAssignment("tags", changes.Tags)
	}

	queryArgs = append(queryArgs, noteID, ownerID)
	queryString := fmt.Sprintf("UPDATE notes SET %s WHERE note_id = $%d AND owner_id = $%d RETURNING %s",
		strings.Join(assignments, ", "), len(queryArgs)-1, len(queryArgs), noteColumns)

	return s.returnNote(ctx, queryString, queryArgs...)
}

// TogglePin flips the pinned flag of the note and returns the updated note.
func (s *PostgresNoteStore) TogglePin(ctx context.Context, ownerID string, noteID uuid.UUID) (*schemas.Note, error) {
	queryString := "UPDATE notes SET is_pinned = NOT is_pinned, updated_at = $1 WHERE note_id = $2 AND owner_id = $3 RETURNING " + noteColumns
	return s.returnNote(ctx, queryString, time.Now(), noteID, ownerID)
}

func (s *PostgresNoteStore) returnNote(ctx context.Context, queryString string, args ...interface{}) (*schemas.Note, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	note, err := scanNote(s.Pool.QueryRow(queryCtx, queryString, args...))
	if err != nil {
		return nil, storeError(err, goerrors.NoteNotFound)
	}
	return note, nil
}

func (s *PostgresNoteStore) Delete(ctx context.Context, ownerID string, noteID uuid.UUID) error {
	queryCtx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	tag, err := s.Pool.Exec(queryCtx, "DELETE FROM notes WHERE note_id = $1 AND owner_id = $2", noteID, ownerID)
	if err != nil {
		return storeError(err, nil)
	}
	if tag.RowsAffected() == 0 {
		return goerrors.NoteNotFound
	}
	return nil
}
