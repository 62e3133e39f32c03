package repository

import (
	"context"

	"atlasdocs/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// Persistence only; no business logic.
// Lookups of a missing id return sql.ErrNoRows.
type DocumentRepository interface {
	// Create inserts a new document record. The ID is assigned by the database identity
	// column; any ID set on doc is ignored. Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// List returns every document ordered by ascending ID.
	List(ctx context.Context) ([]model.Document, error)

	// Update applies the non-nil fields of patch in a single statement and returns the updated row.
	Update(ctx context.Context, id int64, patch model.DocumentPatch) (*model.Document, error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id int64) error
}

// AuditRepository appends audit events. There is deliberately no update or delete.
type AuditRepository interface {
	Insert(ctx context.Context, ev *model.AuditEvent) error
}
