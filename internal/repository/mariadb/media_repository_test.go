package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fhuszti/medias-display-go/internal/model"
	"github.com/fhuszti/medias-display-go/internal/uuid"
)

const selectQuery = `
      SELECT id, bucket, object_key, original_filename, mime_type, size_bytes, status, width, height, variants, created_at, updated_at
      FROM medias
      WHERE id = ?
    `

var columns = []string{
	"id", "bucket", "object_key", "original_filename", "mime_type", "size_bytes",
	"status", "width", "height", "variants", "created_at", "updated_at",
}

func TestMediaRepository_GetByID_Success(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewMediaRepository(sqlDB)

	id := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")
	idBytes, _ := id.Value()
	now := time.Now().UTC().Truncate(time.Second)

	rows := sqlmock.NewRows(columns).AddRow(
		idBytes, "images", "cat.png", "cat.png", "image/png", int64(2048),
		"completed", 640, 480, []byte(`[{"size":"small","object_key":"variants/cat_small.webp","width":150,"height":112}]`),
		now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WithArgs(idBytes).
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID() returned unexpected error: %v", err)
	}
	if got.ID != id || got.Bucket != "images" || got.MimeType != "image/png" || got.SizeBytes != 2048 {
		t.Errorf("GetByID() = %+v", got)
	}
	if got.Status != model.MediaStatusCompleted || got.Width != 640 || got.Height != 480 {
		t.Errorf("GetByID() status/dimensions = %q %dx%d", got.Status, got.Width, got.Height)
	}
	if v, ok := got.Variant(model.SizeSmall); !ok || v.ObjectKey != "variants/cat_small.webp" {
		t.Errorf("GetByID() variants = %+v", got.Variants)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestMediaRepository_GetByID_NotFound(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewMediaRepository(sqlDB)
	id := uuid.NewUUID()

	mock.ExpectQuery(regexp.QuoteMeta(selectQuery)).
		WillReturnRows(sqlmock.NewRows(columns))

	if _, err := repo.GetByID(context.Background(), id); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("GetByID() error = %v; want sql.ErrNoRows", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestMediaRepository_UpdateVariants(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewMediaRepository(sqlDB)
	id := uuid.NewUUID()
	idBytes, _ := id.Value()
	variants := model.Variants{{Size: model.SizeMedium, ObjectKey: "variants/x_medium.webp", Width: 480}}
	raw, _ := variants.Value()

	mock.ExpectExec(regexp.QuoteMeta(`
      UPDATE medias
      SET variants = ?
      WHERE id = ?
    `)).
		WithArgs(raw, idBytes).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateVariants(context.Background(), id, variants); err != nil {
		t.Errorf("UpdateVariants() returned unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestMediaRepository_UpdateVariants_ExecError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error when opening stub database: %s", err)
	}
	defer func() { _ = sqlDB.Close() }()

	repo := NewMediaRepository(sqlDB)
	execErr := errors.New("db down")
	mock.ExpectExec("UPDATE medias").WillReturnError(execErr)

	if err := repo.UpdateVariants(context.Background(), uuid.NewUUID(), nil); !errors.Is(err, execErr) {
		t.Errorf("UpdateVariants() error = %v; want %v", err, execErr)
	}
}
