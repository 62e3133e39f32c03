package handler

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"atlasdocs/internal/audit"
	"atlasdocs/internal/model"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// updateRequest is the PUT /api/documents/:id body. Nil fields are left unchanged;
// field limits are enforced by the service after the secret is checked.
type updateRequest struct {
	Secret      string  `json:"secret"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	Type        *string `json:"type"`
}

func (r updateRequest) patch() model.DocumentPatch {
	return model.DocumentPatch{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Type:        r.Type,
	}
}

// deleteRequest is the POST /api/documents/delete body.
type deleteRequest struct {
	ID     documentID `json:"id"`
	Secret string     `json:"secret"`
}

// documentID accepts either a JSON number or a numeric string. Anything else decodes
// to 0, which the service reports as not found after checking the secret.
type documentID int64

func (d *documentID) UnmarshalJSON(b []byte) error {
	s := string(bytes.TrimSpace(b))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		id = 0
	}
	*d = documentID(id)
	return nil
}

// logRequest is the POST /api/log body sent by the public pages.
type logRequest struct {
	Action   string         `json:"action" validate:"max=64"`
	Path     string         `json:"path" validate:"max=2048"`
	FileName string         `json:"fileName" validate:"max=1024"`
	Extra    map[string]any `json:"extra"`
}

// requestContext captures the caller details attached to audit events.
func requestContext(c *fiber.Ctx) audit.RequestContext {
	var remote string
	if addr := c.Context().RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	return audit.RequestContext{
		IPAddress: audit.ResolveIP(c.Get(fiber.HeaderXForwardedFor), remote),
		Path:      c.Path(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

// parseID returns 0 for anything that is not a positive integer.
func parseID(raw string) int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}
	return id
}

// parseBody decodes a JSON body into out. An empty body or one sent without a JSON
// content type leaves out untouched, so those requests still reach the secret check.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	err := c.BodyParser(out)
	if errors.Is(err, fiber.ErrUnprocessableEntity) {
		return nil
	}
	return err
}

func isPDF(fh *multipart.FileHeader) bool {
	if strings.EqualFold(path.Ext(fh.Filename), ".pdf") {
		return true
	}
	return strings.HasPrefix(fh.Header.Get(fiber.HeaderContentType), "application/pdf")
}

// countPages reads the PDF page count and rewinds f. A document pdfcpu cannot parse
// yields nil pages; only a failed rewind is an error, since the upload would be truncated.
func countPages(f io.ReadSeeker) (*int, error) {
	n, err := api.PageCount(f, pdfmodel.NewDefaultConfiguration())
	if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
		return nil, seekErr
	}
	if err != nil {
		return nil, nil
	}
	return &n, nil
}
