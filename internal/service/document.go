package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"atlasdocs/internal/audit"
	"atlasdocs/internal/model"
	"atlasdocs/internal/repository"
	"atlasdocs/internal/storage"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrMissingFile      = errors.New("file is required")
	ErrNotFound         = errors.New("document not found")
	ErrBlobStore        = errors.New("blob store error")
	ErrMetadataWrite    = errors.New("metadata write failed")
	ErrMetadataDelete   = errors.New("metadata delete failed")
	ErrStoreUnavailable = errors.New("metadata store unavailable")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnreadableUpload = errors.New("upload could not be inspected")
)

const (
	// DefaultType is applied when an upload does not name a document type.
	DefaultType = "PDF"
	dateLayout  = "2006-01-02"
)

var tracer = otel.Tracer("atlasdocs/internal/service")

// Authorizer decides whether a supplied admin secret is valid.
type Authorizer interface {
	Authorize(supplied string) bool
}

// Auditor records admin events. Implementations must not fail the caller.
type Auditor interface {
	Record(ctx context.Context, rc audit.RequestContext, action, fileName string, extra map[string]any)
}

// UploadInput carries one multipart upload. Empty Title, Date and Type fall back to defaults.
type UploadInput struct {
	Secret      string
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
	Title       string
	Description string
	Date        string
	Type        string
	// CountPages, when set, reports the PDF page count and leaves Reader rewound.
	// It runs only for authorized uploads; a nil count means the file could not be parsed.
	CountPages func() (*int, error)
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// List returns every document in ascending id order.
	List(ctx context.Context) ([]model.Document, error)

	// Upload stores the blob first, then its metadata. A failed metadata write leaves an
	// orphaned blob which is deleted on a best-effort basis.
	Upload(ctx context.Context, rc audit.RequestContext, in UploadInput) (*model.Document, error)

	// Update changes only the supplied fields of a document. Ids below 1 are reported as
	// not found once the secret has been accepted.
	Update(ctx context.Context, rc audit.RequestContext, secret string, id int64, patch model.DocumentPatch) (*model.Document, error)

	// Delete removes the blob (best effort) and then the metadata row.
	Delete(ctx context.Context, rc audit.RequestContext, secret string, id int64) error
}

// Option customises a documentService.
type Option func(*documentService)

// WithClock overrides the time source used for storage keys and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *documentService) {
		s.now = now
		s.keys.now = now
	}
}

// WithLocation sets the zone used to derive the default document date.
func WithLocation(loc *time.Location) Option {
	return func(s *documentService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.Storage
	repo  repository.DocumentRepository
	gate  Authorizer
	audit Auditor
	log   zerolog.Logger
	keys  *keyGenerator
	now   func() time.Time
	loc   *time.Location
}

// NewDocumentService constructs a new DocumentService.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewDocumentService(
	store storage.Storage,
	repo repository.DocumentRepository,
	gate Authorizer,
	auditor Auditor,
	log zerolog.Logger,
	opts ...Option,
) DocumentService {
	s := &documentService{
		store: store,
		repo:  repo,
		gate:  gate,
		audit: auditor,
		log:   log,
		keys:  newKeyGenerator(time.Now),
		now:   time.Now,
		loc:   time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns all documents ordered by id.
func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.List")
	defer span.End()

	docs, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}
	span.SetAttributes(attribute.Int("documents.count", len(docs)))
	return docs, nil
}

// Upload authorizes, stores the blob, then persists metadata.
func (s *documentService) Upload(ctx context.Context, rc audit.RequestContext, in UploadInput) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload")
	defer span.End()

	if !s.gate.Authorize(in.Secret) {
		// Audit writes never fail the operation; Record swallows its own errors.
		s.audit.Record(ctx, rc, model.ActionUploadDenied, in.Filename, map[string]any{
			"reason": denialReason(in.Secret),
		})
		return nil, fail(span, ErrUnauthorized)
	}
	if in.Reader == nil || in.Size <= 0 {
		s.audit.Record(ctx, rc, model.ActionUploadFailed, in.Filename, map[string]any{
			"reason": ErrMissingFile.Error(),
		})
		return nil, fail(span, ErrMissingFile)
	}

	var pages *int
	if in.CountPages != nil {
		n, err := in.CountPages()
		if err != nil {
			s.audit.Record(ctx, rc, model.ActionUploadFailed, in.Filename, map[string]any{
				"reason": ErrUnreadableUpload.Error(),
			})
			return nil, fail(span, fmt.Errorf("%w: %w", ErrUnreadableUpload, err))
		}
		pages = n
	}

	key := StorageKey(s.keys.next(), in.Filename)
	span.SetAttributes(attribute.String("document.file", key), attribute.Int64("document.size", in.Size))

	if _, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata: map[string]string{
			"original-filename": in.Filename,
		},
	}); err != nil {
		s.audit.Record(ctx, rc, model.ActionUploadFailed, key, map[string]any{
			"reason": ErrBlobStore.Error(),
		})
		return nil, fail(span, fmt.Errorf("%w: %w", ErrBlobStore, err))
	}

	doc := &model.Document{
		Title:       orDefault(in.Title, in.Filename),
		Description: in.Description,
		Date:        orDefault(in.Date, s.now().In(s.loc).Format(dateLayout)),
		Type:        orDefault(in.Type, DefaultType),
		File:        key,
		URL:         s.store.PublicURL(key),
	}

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		s.removeOrphan(ctx, key, err)
		s.audit.Record(ctx, rc, model.ActionUploadFailed, key, map[string]any{
			"reason": ErrMetadataWrite.Error(),
		})
		return nil, fail(span, fmt.Errorf("%w: %w", ErrMetadataWrite, err))
	}

	extra := map[string]any{"id": stored.ID, "title": stored.Title}
	if pages != nil {
		extra["pages"] = *pages
	}
	s.audit.Record(ctx, rc, model.ActionUploadAccepted, stored.File, extra)

	span.SetAttributes(attribute.Int64("document.id", stored.ID))
	return stored, nil
}

// removeOrphan deletes a blob whose metadata insert failed. It runs detached from
// request cancellation; a failure leaves the key in the log for reconciliation.
func (s *documentService) removeOrphan(ctx context.Context, key string, cause error) {
	s.log.Error().Err(cause).Str("file", key).Msg("metadata insert failed after blob upload")

	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Error().Err(err).Str("file", key).Msg("orphaned blob not removed; reconcile manually")
		return
	}
	s.log.Info().Str("file", key).Msg("orphaned blob removed")
}

// Update applies patch to document id.
func (s *documentService) Update(ctx context.Context, rc audit.RequestContext, secret string, id int64, patch model.DocumentPatch) (*model.Document, error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Update", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	if !s.gate.Authorize(secret) {
		s.audit.Record(ctx, rc, model.ActionUpdateDenied, "", map[string]any{
			"id":     id,
			"reason": denialReason(secret),
		})
		return nil, fail(span, ErrUnauthorized)
	}

	if id < 1 {
		s.audit.Record(ctx, rc, model.ActionUpdateFailed, "", map[string]any{
			"id":     id,
			"reason": ErrNotFound.Error(),
		})
		return nil, fail(span, ErrNotFound)
	}
	if err := validatePatch(patch); err != nil {
		s.audit.Record(ctx, rc, model.ActionUpdateFailed, "", map[string]any{
			"id":     id,
			"reason": ErrInvalidInput.Error(),
		})
		return nil, fail(span, fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	var (
		doc *model.Document
		err error
	)
	if patch.Empty() {
		// Nothing to change; report the current row without touching updated_at.
		doc, err = s.repo.FindByID(ctx, id)
	} else {
		doc, err = s.repo.Update(ctx, id, patch)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.audit.Record(ctx, rc, model.ActionUpdateFailed, "", map[string]any{
				"id":     id,
				"reason": ErrNotFound.Error(),
			})
			return nil, fail(span, ErrNotFound)
		}
		s.log.Error().Err(err).Int64("id", id).Msg("document update failed")
		s.audit.Record(ctx, rc, model.ActionUpdateFailed, "", map[string]any{
			"id":     id,
			"reason": ErrMetadataWrite.Error(),
		})
		return nil, fail(span, fmt.Errorf("%w: %w", ErrMetadataWrite, err))
	}

	s.audit.Record(ctx, rc, model.ActionUpdateAccepted, doc.File, map[string]any{
		"id":    doc.ID,
		"title": doc.Title,
	})
	return doc, nil
}

// Delete removes a document from storage, then deletes its record.
func (s *documentService) Delete(ctx context.Context, rc audit.RequestContext, secret string, id int64) error {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete", trace.WithAttributes(attribute.Int64("document.id", id)))
	defer span.End()

	if !s.gate.Authorize(secret) {
		s.audit.Record(ctx, rc, model.ActionDeleteDenied, "", map[string]any{
			"id":     id,
			"reason": denialReason(secret),
		})
		return fail(span, ErrUnauthorized)
	}

	// Look the row up before mutating anything.
	doc, err := s.findForDelete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.audit.Record(ctx, rc, model.ActionDeleteFailed, "", map[string]any{
				"id":     id,
				"reason": ErrNotFound.Error(),
			})
			return fail(span, ErrNotFound)
		}
		return fail(span, fmt.Errorf("%w: %w", ErrStoreUnavailable, err))
	}

	// A missing or unreachable blob must not block metadata cleanup.
	blobRemoved := true
	if doc.File != "" {
		if err := s.store.Delete(ctx, doc.File); err != nil {
			blobRemoved = false
			s.log.Warn().Err(err).Int64("id", id).Str("file", doc.File).Msg("blob delete failed; removing metadata anyway")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.log.Error().Err(err).Int64("id", id).Str("file", doc.File).Bool("blob_removed", blobRemoved).Msg("metadata delete failed")
		s.audit.Record(ctx, rc, model.ActionDeleteFailed, doc.File, map[string]any{
			"id":     id,
			"reason": ErrMetadataDelete.Error(),
		})
		return fail(span, fmt.Errorf("%w: %w", ErrMetadataDelete, err))
	}

	s.audit.Record(ctx, rc, model.ActionDeleteAccepted, doc.File, map[string]any{
		"id":           doc.ID,
		"title":        doc.Title,
		"blob_removed": blobRemoved,
	})
	return nil
}

// findForDelete treats ids below 1 as missing rows.
func (s *documentService) findForDelete(ctx context.Context, id int64) (*model.Document, error) {
	if id < 1 {
		return nil, sql.ErrNoRows
	}
	return s.repo.FindByID(ctx, id)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func denialReason(secret string) string {
	if secret == "" {
		return "missing secret"
	}
	return "invalid secret"
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
