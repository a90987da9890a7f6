package resumes

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resumes")).
		WithArgs(sqlmock.AnyArg(), "user-1", "resume.pdf", "application/pdf", int64(42), "user-1/1_resume.pdf", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	got, err := repo.Create(context.Background(), Resume{
		OwnerID:     "user-1",
		FileName:    "resume.pdf",
		FileType:    "application/pdf",
		FileSize:    42,
		StoragePath: "user-1/1_resume.pdf",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == "" {
		t.Fatalf("expected generated id")
	}
	if got.UploadedAt.IsZero() || !got.UpdatedAt.Equal(got.UploadedAt) {
		t.Fatalf("expected uploadedAt == updatedAt, got %v / %v", got.UploadedAt, got.UpdatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreatePropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	dbErr := errors.New("connection refused")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resumes")).WillReturnError(dbErr)

	repo := &PGRepo{DB: db}
	if _, err := repo.Create(context.Background(), Resume{ID: "r-1", OwnerID: "u"}); !errors.Is(err, dbErr) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resumes")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "resumes_storage_path_key"})

	repo := &PGRepo{DB: db}
	_, err = repo.Create(context.Background(), Resume{ID: "r-1", OwnerID: "u", StoragePath: "u/1_a.pdf"})
	if !errors.Is(err, ErrDuplicateStoragePath) {
		t.Fatalf("expected ErrDuplicateStoragePath, got %v", err)
	}
}

func TestPGRepoFindByIDAndOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	uploaded := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "file_name", "file_type", "file_size", "storage_path", "uploaded_at", "updated_at"}).
		AddRow("r-1", "user-1", "resume.pdf", "application/pdf", int64(42), "user-1/1_resume.pdf", uploaded, uploaded)
	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes")).
		WithArgs("r-1", "user-1").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	got, err := repo.FindByIDAndOwner(context.Background(), "r-1", "user-1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.StoragePath != "user-1/1_resume.pdf" || got.FileSize != 42 {
		t.Fatalf("unexpected record %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoFindForeignOwnerIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM resumes")).
		WithArgs("r-1", "intruder").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.FindByIDAndOwner(context.Background(), "r-1", "intruder"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
