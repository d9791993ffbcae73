package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jereyes4/Wahl-Chains/pkg/analysis"
	"github.com/jereyes4/Wahl-Chains/pkg/errors"
)

// MongoOptions configures a [MongoStore].
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore writes results to a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects, pings the primary and ensures an index on
// (run_id, index).
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if err := errors.ValidateMongoURI(opts.URI); err != nil {
		return nil, err
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping")
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "index", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create index")
	}
	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

// Save inserts one document per result.
func (s *MongoStore) Save(ctx context.Context, runID string, results []analysis.ExampleResult) error {
	if len(results) == 0 {
		return nil
	}
	docs := Documents(runID, results, s.now())
	batch := make([]any, len(docs))
	for i := range docs {
		batch[i] = docs[i]
	}
	if _, err := s.coll.InsertMany(ctx, batch); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save run %s", runID)
	}
	return nil
}

// Load returns the documents of a run ordered by example index.
func (s *MongoStore) Load(ctx context.Context, runID string) ([]Document, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "run_id", Value: runID}},
		options.Find().SetSort(bson.D{{Key: "index", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load run %s", runID)
	}
	var docs []Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode run %s", runID)
	}
	if len(docs) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, "run %s not found", runID)
	}
	return docs, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
