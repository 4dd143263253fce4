package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/lotus-yoga/booking-api/internal/model"
)

// InstructorRepository handles read access to instructors. Instructor
// documents are provisioned directly in the store; this API never writes them.
type InstructorRepository struct {
	coll *mongo.Collection
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *mongo.Database) *InstructorRepository {
	return &InstructorRepository{coll: db.Collection(instructorsCollection)}
}

// List returns all instructors.
func (r *InstructorRepository) List(ctx context.Context) ([]model.Instructor, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list instructors: %w", err)
	}
	var instructors []model.Instructor
	if err := cursor.All(ctx, &instructors); err != nil {
		return nil, fmt.Errorf("decode instructors: %w", err)
	}
	return instructors, nil
}

// GetByID returns a single instructor or ErrNotFound.
func (r *InstructorRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Instructor, error) {
	var ins model.Instructor
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&ins)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get instructor: %w", err)
	}
	return &ins, nil
}

// ListByName returns all instructors with the given name. The name is a
// denormalized join key on classes and is not enforced unique, so zero or
// many matches are possible.
func (r *InstructorRepository) ListByName(ctx context.Context, name string) ([]model.Instructor, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"name": name})
	if err != nil {
		return nil, fmt.Errorf("list instructors by name: %w", err)
	}
	var instructors []model.Instructor
	if err := cursor.All(ctx, &instructors); err != nil {
		return nil, fmt.Errorf("decode instructors: %w", err)
	}
	return instructors, nil
}
