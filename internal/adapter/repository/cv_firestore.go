package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cv-builder/internal/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const DefaultCollection = "cvs"

// FirestoreStore keeps one document per user, keyed by user id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{client: client, collection: collection}
}

func (s *FirestoreStore) Load(ctx context.Context, userID string) (*model.Resume, error) {
	snap, err := s.client.Collection(s.collection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", s.collection, userID, err)
	}
	raw, err := json.Marshal(snap.Data())
	if err != nil {
		return nil, fmt.Errorf("re-encode firestore data: %w", err)
	}
	return decode(raw)
}

// Save replaces the whole document. Field names match the JSON layout.
func (s *FirestoreStore) Save(ctx context.Context, userID string, doc *model.Resume) error {
	b, err := encode(doc)
	if err != nil {
		return err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(b, &data); err != nil {
		return fmt.Errorf("prepare firestore data: %w", err)
	}
	data["updatedAt"] = firestore.ServerTimestamp

	if _, err := s.client.Collection(s.collection).Doc(userID).Set(ctx, data); err != nil {
		return fmt.Errorf("set %s/%s: %w", s.collection, userID, err)
	}
	return nil
}
