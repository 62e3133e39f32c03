package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	_ "atlasdocs/docs"
	"atlasdocs/internal/audit"
	"atlasdocs/internal/model"
	"atlasdocs/internal/service"
)

// ClientRecorder persists browser telemetry posted to /api/log.
type ClientRecorder interface {
	RecordClient(ctx context.Context, rc audit.RequestContext, ce audit.ClientEvent) error
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, events ClientRecorder) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/documents", ListDocuments(docSvc))
	api.Post("/upload", UploadDocument(docSvc))
	api.Put("/documents/:id", UpdateDocument(docSvc))
	api.Post("/documents/delete", DeleteDocument(docSvc))
	api.Post("/log", LogEvent(events))
}

// RegisterDocs serves Swagger UI and doc.json under /swagger. The document leaves host and
// schemes empty, so the UI calls whichever origin served it and nothing is mutated per request.
func RegisterDocs(app *fiber.App) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Pings the metadata store.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, msgUnavailable)
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe answers 200 while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments godoc
// @Summary List documents
// @Tags documents
// @Produce json
// @Success 200 {array} model.Document
// @Failure 500 {object} errorPayload
// @Router /api/documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docs, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err, msgListFailed)
		}
		if docs == nil {
			docs = []model.Document{}
		}
		return c.JSON(docs)
	}
}

// UploadDocument godoc
// @Summary Upload a document
// @Description Stores the file in object storage and records its metadata. Requires the admin secret.
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Document file"
// @Param secret formData string true "Admin secret"
// @Param title formData string false "Title (defaults to the file name)"
// @Param description formData string false "Description"
// @Param date formData string false "Date (defaults to today)"
// @Param type formData string false "Type (defaults to PDF)"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/upload [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.UploadInput{
			Secret:      c.FormValue("secret"),
			Title:       c.FormValue("title"),
			Description: c.FormValue("description"),
			Date:        c.FormValue("date"),
			Type:        c.FormValue("type"),
		}

		// A missing file is reported by the service, after the secret is checked.
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, msgFileRequired)
			}
			defer f.Close()

			ct := fh.Header.Get(fiber.HeaderContentType)
			if ct == "" {
				ct = fiber.MIMEOctetStream
			}
			in.Reader = f
			in.Size = fh.Size
			in.Filename = fh.Filename
			in.ContentType = ct

			if isPDF(fh) {
				in.CountPages = func() (*int, error) { return countPages(f) }
			}
		}

		doc, err := docSvc.Upload(c.UserContext(), requestContext(c), in)
		if err != nil {
			return writeServiceError(c, err, msgUploadFailed)
		}
		return c.JSON(fiber.Map{"success": true, "document": doc})
	}
}

// UpdateDocument godoc
// @Summary Update document metadata
// @Description Changes only the supplied fields. Requires the admin secret.
// @Tags documents
// @Accept json
// @Produce json
// @Param id path string true "Document id (non-numeric ids answer 404 once authorized)"
// @Param body body updateRequest true "Fields to change"
// @Success 200 {object} map[string]any
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/documents/{id} [put]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, msgInvalidBody)
		}

		doc, err := docSvc.Update(c.UserContext(), requestContext(c), req.Secret, parseID(c.Params("id")), req.patch())
		if err != nil {
			return writeServiceError(c, err, msgUpdateFailed)
		}
		return c.JSON(fiber.Map{"success": true, "document": doc})
	}
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description Removes the stored file (best effort) and the metadata row. Requires the admin secret.
// @Tags documents
// @Accept json
// @Produce json
// @Param body body deleteRequest true "Document id and admin secret"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errorPayload
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/documents/delete [post]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req deleteRequest
		if err := parseBody(c, &req); err != nil {
			return writeError(c, fiber.StatusBadRequest, msgInvalidBody)
		}

		if err := docSvc.Delete(c.UserContext(), requestContext(c), req.Secret, int64(req.ID)); err != nil {
			return writeServiceError(c, err, msgDeleteFailed)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// LogEvent godoc
// @Summary Record a client event
// @Description Page visits and download clicks from the public site. No authentication.
// @Tags audit
// @Accept json
// @Produce json
// @Param body body logRequest true "Event"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /api/log [post]
func LogEvent(events ClientRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Beacons from the public pages are best effort; an unreadable body is an empty event.
		var req logRequest
		if err := parseBody(c, &req); err != nil {
			req = logRequest{}
		}
		if err := getValidator().Struct(req); err != nil {
			return writeError(c, fiber.StatusBadRequest, msgInvalidBody)
		}

		err := events.RecordClient(c.UserContext(), requestContext(c), audit.ClientEvent{
			Action:   req.Action,
			Path:     req.Path,
			FileName: req.FileName,
			Extra:    req.Extra,
		})
		if err != nil {
			return writeServiceError(c, err, msgLogFailed)
		}
		return c.JSON(fiber.Map{"ok": true})
	}
}
