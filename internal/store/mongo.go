package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"navigator/internal/apperr"
	"navigator/internal/database"
	"navigator/internal/models"
)

// MongoStore keeps users in a Mongo collection with a string _id and a unique
// email index (see database.EnsureUserIndexes).
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(database.UsersCollection), now: time.Now}
}

func (s *MongoStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, mongoErr(err)
	}
	return u.Normalize(), nil
}

func (s *MongoStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	rec := u.Clone().Normalize()
	rec.Email = NormalizeEmail(rec.Email)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		return nil, mongoErr(err)
	}
	return rec, nil
}

func (s *MongoStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if u.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "user id is required")
	}
	rec := u.Clone().Normalize()
	rec.Email = NormalizeEmail(rec.Email)
	rec.UpdatedAt = s.now()

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return nil, mongoErr(err)
	}
	return rec, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, mongoErr(err)
	}
	return res.DeletedCount > 0, nil
}

func (s *MongoStore) Exists(ctx context.Context, id string) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, mongoErr(err)
	}
	return n > 0, nil
}

func mongoErr(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return conflict(err)
	case mongo.IsTimeout(err), mongo.IsNetworkError(err),
		errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return unavailable(err)
	default:
		return apperr.Wrap(apperr.KindInternal, "mongo", err)
	}
}
