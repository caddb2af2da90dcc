package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore maps every collection onto a MongoDB collection of the project database.
// The document id is stored as _id.
type MongoStore struct {
	db  *mongo.Database
	log *slog.Logger
}

// changeEvent is the part of a change stream event the store needs.
type changeEvent struct {
	OperationType string `bson:"operationType"`
	DocumentKey   struct {
		ID any `bson:"_id"`
	} `bson:"documentKey"`
}

// NewMongoStore creates a store over db.
func NewMongoStore(db *mongo.Database, log *slog.Logger) *MongoStore {
	return &MongoStore{db: db, log: log}
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to find document: %w", err)
	}

	return fromBSON(raw)
}

func (s *MongoStore) List(ctx context.Context, collection string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err = cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		doc, errDoc := fromBSON(raw)
		if errDoc != nil {
			return nil, errDoc
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (s *MongoStore) Set(ctx context.Context, collection string, doc Document) error {
	if doc.ID == "" {
		return ErrEmptyID
	}

	replacement, err := toBSON(doc.Data)
	if err != nil {
		return err
	}

	opts := options.Replace().SetUpsert(true)
	if _, err = s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, replacement, opts); err != nil {
		return fmt.Errorf("failed to replace document: %w", err)
	}

	return nil
}

func (s *MongoStore) Add(ctx context.Context, collection string, data []byte) (string, error) {
	fields, err := toBSON(data)
	if err != nil {
		return "", err
	}

	id := primitive.NewObjectID().Hex()
	doc := append(bson.D{{Key: "_id", Value: id}}, fields...)
	if _, err = s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert document: %w", err)
	}

	return id, nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Watch opens a change stream on the collection. Change streams need a replica set.
func (s *MongoStore) Watch(ctx context.Context, collection string) (*ChangeStream, error) {
	changes, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return nil, fmt.Errorf("failed to open change stream: %w", err)
	}

	stream, streamCtx := newChangeStream(ctx)
	go func() {
		var errStream error
		defer func() {
			_ = changes.Close(context.Background())
			stream.finish(errStream)
		}()

		for changes.Next(streamCtx) {
			var event changeEvent
			if errDecode := changes.Decode(&event); errDecode != nil {
				s.log.WarnContext(streamCtx, "Malformed change event", "error", errDecode)
				continue
			}

			change := Change{
				Project:    s.db.Name(),
				Collection: collection,
				ID:         documentID(event.DocumentKey.ID),
				Op:         OpPut,
			}
			if event.OperationType == "delete" {
				change.Op = OpDelete
			}

			if !stream.send(streamCtx, change) {
				break
			}
		}

		errStream = changes.Err()
		if streamCtx.Err() != nil {
			errStream = streamCtx.Err()
		}
	}()

	return stream, nil
}

// toBSON parses a JSON object into an ordered BSON document without _id.
func toBSON(data []byte) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert document to bson: %w", err)
	}

	fields := doc[:0]
	for _, elem := range doc {
		if elem.Key != "_id" {
			fields = append(fields, elem)
		}
	}

	return fields, nil
}

// fromBSON renders a stored document back to plain JSON.
func fromBSON(raw bson.M) (Document, error) {
	id := documentID(raw["_id"])
	delete(raw, "_id")

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return Document{}, fmt.Errorf("failed to convert document to json: %w", err)
	}

	return Document{ID: id, Data: data}, nil
}

func documentID(value any) string {
	switch id := value.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	default:
		return fmt.Sprint(id)
	}
}
