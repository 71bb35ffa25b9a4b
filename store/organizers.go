/* organizers.go
 * Contains the methods for interacting with the organizers collection.
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-typing-comp/models"
)

// ErrEmailTaken means an organizer account already exists for the email.
var ErrEmailTaken = errors.New("email already registered")

// ErrOrganizerNotFound means no organizer account matches the email.
var ErrOrganizerNotFound = errors.New("organizer not found")

// CreateOrganizer inserts a new organizer account. Emails are stored
// lowercase and are unique.
func (s *Store) CreateOrganizer(ctx context.Context, o *models.Organizer) error {
	o.ID = primitive.NewObjectID().Hex()
	o.Email = strings.ToLower(o.Email)
	o.CreatedAt = time.Now()

	_, err := s.organizers.InsertOne(ctx, o)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("failed to create organizer: %w", err)
	}
	return nil
}

// FindOrganizerByEmail looks up an organizer account by email.
func (s *Store) FindOrganizerByEmail(ctx context.Context, email string) (*models.Organizer, error) {
	var o models.Organizer
	err := s.organizers.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrganizerNotFound
		}
		return nil, fmt.Errorf("failed to find organizer: %w", err)
	}
	return &o, nil
}
