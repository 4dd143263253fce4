package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lotus-yoga/booking-api/internal/model"
)

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	coll *mongo.Collection
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *mongo.Database) *ClassRepository {
	return &ClassRepository{coll: db.Collection(classesCollection)}
}

// List returns all classes.
func (r *ClassRepository) List(ctx context.Context) ([]model.Class, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	var classes []model.Class
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

// GetByID returns a single class or ErrNotFound.
func (r *ClassRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Class, error) {
	var c model.Class
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &c, nil
}

// ListByInstructorName returns all classes whose denormalized instructor
// field equals the given name.
func (r *ClassRepository) ListByInstructorName(ctx context.Context, name string) ([]model.Class, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"instructor": name})
	if err != nil {
		return nil, fmt.Errorf("list classes by instructor: %w", err)
	}
	var classes []model.Class
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

// ListByIDs returns the classes matching the given ids. Ids with no matching
// document are silently absent from the result.
func (r *ClassRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Class, error) {
	if len(ids) == 0 {
		return []model.Class{}, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("list classes by ids: %w", err)
	}
	var classes []model.Class
	if err := cursor.All(ctx, &classes); err != nil {
		return nil, fmt.Errorf("decode classes: %w", err)
	}
	return classes, nil
}

// ReserveSeat atomically increments studentsEnrolled, but only while a seat
// is still free, and returns the class as it looks after the increment.
//
// A naive read-then-write here is racy: two purchases of the last seat can
// both read studentsEnrolled before either writes it back, overselling the
// class. Folding the capacity check into the update filter makes the store
// decide, one document write at a time:
//
//	filter: {_id: id, $expr: {studentsEnrolled < totalSeats}}
//	update: {$inc: {studentsEnrolled: 1}}
//
// When the filter matches nothing, either the class is gone (ErrNotFound) or
// it is full (ErrClassFull); a plain read distinguishes the two.
func (r *ClassRepository) ReserveSeat(ctx context.Context, id primitive.ObjectID) (*model.Class, error) {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$lt": bson.A{"$studentsEnrolled", "$totalSeats"}},
	}
	update := bson.M{"$inc": bson.M{"studentsEnrolled": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Class
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if err == nil {
		return &c, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("reserve seat: %w", err)
	}

	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrClassFull
}

// ReleaseSeat undoes a reservation made by ReserveSeat. Used to compensate
// when the purchase record cannot be written after the seat was taken.
func (r *ClassRepository) ReleaseSeat(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{
		"_id":   id,
		"$expr": bson.M{"$gt": bson.A{"$studentsEnrolled", 0}},
	}
	update := bson.M{"$inc": bson.M{"studentsEnrolled": -1}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("release seat: %w", err)
	}
	return nil
}
