package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/hatchery/internal/domain/models"
	"github.com/mamadbah2/hatchery/internal/repository/memory"
)

const (
	stateCollection  = "pipeline_state"
	reportCollection = "daily_reports"
)

// Repository defines the report archive operations.
type Repository interface {
	SaveDailyReport(ctx context.Context, summaries []models.BatchSummary) error
}

// MongoDBRepository stores pipeline snapshots and archived daily reports.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
	logger *zap.Logger
}

var (
	_ memory.Persister = (*MongoDBRepository)(nil)
	_ Repository       = (*MongoDBRepository)(nil)
)

type bucketDocument struct {
	Bucket    string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		dbName: dbName,
		logger: logger,
	}, nil
}

// Load reads every state bucket.
func (r *MongoDBRepository) Load(ctx context.Context) (memory.Snapshot, error) {
	collection := r.client.Database(r.dbName).Collection(stateCollection)
	cursor, err := collection.Find(ctx, bson.D{})
	if err != nil {
		return memory.Snapshot{}, fmt.Errorf("failed to query state: %w", err)
	}
	var docs []bucketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return memory.Snapshot{}, fmt.Errorf("failed to decode state: %w", err)
	}

	payloads := make(map[string][]byte, len(docs))
	for _, doc := range docs {
		payloads[doc.Bucket] = doc.Payload
	}
	return memory.DecodeSnapshot(payloads)
}

// Save replaces every state bucket inside a session transaction.
func (r *MongoDBRepository) Save(ctx context.Context, snapshot memory.Snapshot) error {
	payloads, err := snapshot.Encode()
	if err != nil {
		return err
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	collection := r.client.Database(r.dbName).Collection(stateCollection)
	now := time.Now().UTC()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		for _, bucket := range memory.Buckets {
			doc := bucketDocument{Bucket: bucket, Payload: payloads[bucket], UpdatedAt: now}
			_, err := collection.ReplaceOne(sc, bson.M{"_id": bucket}, doc, options.Replace().SetUpsert(true))
			if err != nil {
				return nil, fmt.Errorf("replace bucket %s: %w", bucket, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	r.logger.Debug("snapshot persisted", zap.Int("buckets", len(payloads)))
	return nil
}

// SaveDailyReport archives one report run.
func (r *MongoDBRepository) SaveDailyReport(ctx context.Context, summaries []models.BatchSummary) error {
	if len(summaries) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(summaries))
	for _, s := range summaries {
		docs = append(docs, s)
	}
	collection := r.client.Database(r.dbName).Collection(reportCollection)
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert daily report: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
