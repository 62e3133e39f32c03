package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"atlasdocs/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestAuditPostgres_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAuditPostgres(db)
	ctx := context.Background()

	t.Run("with optional fields", func(t *testing.T) {
		ip := "203.0.113.5"
		path := "/index.html"
		file := "1-a.pdf"
		now := time.Now().UTC()

		mock.ExpectQuery("INSERT INTO audit_logs").
			WithArgs(ip, path, "download", file, []byte(`{"user_agent":"curl"}`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

		ev := &model.AuditEvent{
			IPAddress: &ip,
			Path:      &path,
			Action:    "download",
			FileName:  &file,
			Extra:     map[string]any{"user_agent": "curl"},
		}
		err := repo.Insert(ctx, ev)

		assert.NoError(t, err)
		assert.Equal(t, int64(11), ev.ID)
		assert.Equal(t, now, ev.CreatedAt)
	})

	t.Run("absent fields are stored as NULL", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO audit_logs").
			WithArgs(nil, nil, "visit", nil, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(12, time.Now()))

		err := repo.Insert(ctx, &model.AuditEvent{Action: "visit"})

		assert.NoError(t, err)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO audit_logs").
			WillReturnError(errors.New("db down"))

		err := repo.Insert(ctx, &model.AuditEvent{Action: "visit"})

		assert.EqualError(t, err, "db down")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
