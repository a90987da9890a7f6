package resumes

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMongoDocumentConversion(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	res := Resume{
		ID:          primitive.NewObjectID().Hex(),
		OwnerID:     "user-1",
		FileName:    "resume.pdf",
		FileType:    "application/pdf",
		FileSize:    10,
		StoragePath: "user-1/1_resume.pdf",
		UploadedAt:  at,
		UpdatedAt:   at,
	}

	doc, err := toMongo(res)
	if err != nil {
		t.Fatalf("toMongo: %v", err)
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"_id", "ownerId", "storagePath", "uploadedAt"} {
		if _, ok := m[field]; !ok {
			t.Fatalf("expected field %q in %v", field, m)
		}
	}

	if got := fromMongo(doc); got != res {
		t.Fatalf("conversion mismatch: got %+v want %+v", got, res)
	}
}

func TestMongoRepoMalformedIDIsNotFound(t *testing.T) {
	repo := &MongoRepo{}
	if _, err := repo.FindByIDAndOwner(context.Background(), "not-an-object-id", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
