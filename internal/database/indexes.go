package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"navigator/internal/logging"
)

// UsersCollection is the collection (Mongo) and root collection (Firestore)
// holding user documents.
const UsersCollection = "users"

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection(UsersCollection).Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	logging.Info().Msg("[DB] creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		logging.Error().Err(err).Msg("[DB] email index error")
		return err
	}
	logging.Info().Msg("[DB] email_unique index created")
	return nil
}
