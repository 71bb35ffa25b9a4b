/* store.go
 * Connection handling and index setup for the MongoDB store.
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-typing-comp/logger"
)

// Store is the durable backend for competitions, participants, and
// organizer accounts. It implements session.PersistenceGateway.
type Store struct {
	client       *mongo.Client
	competitions *mongo.Collection
	participants *mongo.Collection
	organizers   *mongo.Collection
}

// New connects to MongoDB, pings it, and ensures the indexes the
// application relies on.
func New(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping failed: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client:       client,
		competitions: db.Collection("competitions"),
		participants: db.Collection("participants"),
		organizers:   db.Collection("organizers"),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	logger.Info.Printf("[store] Connected to MongoDB database %s", dbName)
	return s, nil
}

// ensureIndexes creates the unique join-code and organizer-email indexes plus
// the participant lookup index.
func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := s.competitions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("failed to create competition code index: %w", err)
	}

	_, err = s.participants.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "competitionId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create participant index: %w", err)
	}

	_, err = s.organizers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("failed to create organizer email index: %w", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
