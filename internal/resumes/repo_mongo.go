package resumes

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "resumes"

type mongoResume struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID     string             `bson:"ownerId"`
	FileName    string             `bson:"fileName"`
	FileType    string             `bson:"fileType"`
	FileSize    int64              `bson:"fileSize"`
	StoragePath string             `bson:"storagePath"`
	UploadedAt  time.Time          `bson:"uploadedAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// MongoRepo implements Repo on a MongoDB collection. Record ids are ObjectID hex strings.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo binds the repo to the resumes collection of db.
func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{coll: db.Collection(mongoCollection)}
}

// EnsureIndexes creates the owner lookup index and the unique storage path index.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "uploadedAt", Value: -1}}},
		{Keys: bson.D{{Key: "storagePath", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return err
}

func (r *MongoRepo) Create(ctx context.Context, res Resume) (Resume, error) {
	res = withDefaults(res, func() string { return primitive.NewObjectID().Hex() }, time.Now)

	doc, err := toMongo(res)
	if err != nil {
		return Resume{}, err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Resume{}, ErrDuplicateStoragePath
		}
		return Resume{}, err
	}
	return res, nil
}

func (r *MongoRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (Resume, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return Resume{}, ErrNotFound
	}

	var doc mongoResume
	err = r.coll.FindOne(ctx, bson.M{"_id": oid, "ownerId": ownerID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return fromMongo(doc), nil
}

func toMongo(res Resume) (mongoResume, error) {
	oid, err := primitive.ObjectIDFromHex(res.ID)
	if err != nil {
		return mongoResume{}, err
	}
	return mongoResume{
		ID:          oid,
		OwnerID:     res.OwnerID,
		FileName:    res.FileName,
		FileType:    res.FileType,
		FileSize:    res.FileSize,
		StoragePath: res.StoragePath,
		UploadedAt:  res.UploadedAt,
		UpdatedAt:   res.UpdatedAt,
	}, nil
}

func fromMongo(doc mongoResume) Resume {
	return Resume{
		ID:          doc.ID.Hex(),
		OwnerID:     doc.OwnerID,
		FileName:    doc.FileName,
		FileType:    doc.FileType,
		FileSize:    doc.FileSize,
		StoragePath: doc.StoragePath,
		UploadedAt:  doc.UploadedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
}

var _ Repo = (*MongoRepo)(nil)
