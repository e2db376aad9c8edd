package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/medikart/pos-engine/internal/domain/models"
)

// Repository defines the interface for the sales journal.
type Repository interface {
	SaveSale(ctx context.Context, record models.SaleRecord) error
	ListSalesBetween(ctx context.Context, start, end time.Time) ([]models.SaleRecord, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB-backed sales journal.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: "sales",
	}, nil
}

// SaveSale appends a checkout record to the journal.
func (r *MongoDBRepository) SaveSale(ctx context.Context, record models.SaleRecord) error {
	collection := r.client.Database(r.dbName).Collection(r.collName)
	if _, err := collection.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert sale record: %w", err)
	}
	return nil
}

// ListSalesBetween returns journal records with recorded_at in [start, end),
// oldest first.
func (r *MongoDBRepository) ListSalesBetween(ctx context.Context, start, end time.Time) ([]models.SaleRecord, error) {
	collection := r.client.Database(r.dbName).Collection(r.collName)

	filter := bson.M{"recorded_at": bson.M{"$gte": start, "$lt": end}}
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.SaleRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode sale records: %w", err)
	}
	return records, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
