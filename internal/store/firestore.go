package store

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"navigator/internal/apperr"
	"navigator/internal/database"
	"navigator/internal/models"
)

// FirestoreStore keeps one document per user in the users collection. Provider
// users are keyed by their Firebase uid; password users get a generated id.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client, now: time.Now}
}

func (s *FirestoreStore) users() *firestore.CollectionRef {
	return s.client.Collection(database.UsersCollection)
}

func (s *FirestoreStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	snap, err := s.users().Doc(id).Get(ctx)
	if err != nil {
		return nil, firestoreErr(err)
	}
	return decodeSnapshot(snap)
}

func (s *FirestoreStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	iter := s.users().Where("email", "==", NormalizeEmail(email)).Limit(1).Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, firestoreErr(err)
	}
	return decodeSnapshot(snap)
}

// Create checks the email and writes the document in one transaction so two
// signups for the same address cannot both succeed.
func (s *FirestoreStore) Create(ctx context.Context, u *models.User) (*models.User, error) {
	rec := u.Clone().Normalize()
	rec.Email = NormalizeEmail(rec.Email)
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}

	var ref *firestore.DocumentRef
	if rec.ID != "" {
		ref = s.users().Doc(rec.ID)
	} else {
		ref = s.users().NewDoc()
	}

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := s.users().Where("email", "==", rec.Email).Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return err
		}
		if len(docs) > 0 {
			return ErrConflict
		}
		return tx.Create(ref, rec)
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrConflict
		}
		return nil, firestoreErr(err)
	}

	rec.ID = ref.ID
	return rec, nil
}

func (s *FirestoreStore) Update(ctx context.Context, u *models.User) (*models.User, error) {
	if u.ID == "" {
		return nil, apperr.New(apperr.KindValidation, "user id is required")
	}
	rec := u.Clone().Normalize()
	rec.Email = NormalizeEmail(rec.Email)
	rec.UpdatedAt = s.now()

	if _, err := s.users().Doc(rec.ID).Set(ctx, rec); err != nil {
		return nil, firestoreErr(err)
	}
	return rec, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) (bool, error) {
	_, err := s.users().Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, firestoreErr(err)
	}
	return true, nil
}

func (s *FirestoreStore) Exists(ctx context.Context, id string) (bool, error) {
	snap, err := s.users().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return false, nil
		}
		return false, firestoreErr(err)
	}
	return snap.Exists(), nil
}

func decodeSnapshot(snap *firestore.DocumentSnapshot) (*models.User, error) {
	var u models.User
	if err := snap.DataTo(&u); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "decode user document", err)
	}
	u.ID = snap.Ref.ID
	return u.Normalize(), nil
}

// firestoreErr maps gRPC status codes from the Firestore client onto store errors.
func firestoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return unavailable(err)
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return conflict(err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted, codes.Canceled:
		return unavailable(err)
	default:
		return apperr.Wrap(apperr.KindInternal, "firestore", err)
	}
}
