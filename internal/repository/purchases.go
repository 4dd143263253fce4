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

// PurchaseRepository handles persistence for purchase records.
type PurchaseRepository struct {
	coll *mongo.Collection
}

// NewPurchaseRepository constructs a PurchaseRepository.
func NewPurchaseRepository(db *mongo.Database) *PurchaseRepository {
	return &PurchaseRepository{coll: db.Collection(purchasesCollection)}
}

// EnsureIndexes creates the unique (classId, email) index that backs the
// one-purchase-per-class-per-user invariant. Safe to call on every startup.
func (r *PurchaseRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "classId", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create purchase index: %w", err)
	}
	return nil
}

// List returns all purchase records.
func (r *PurchaseRepository) List(ctx context.Context) ([]model.Purchase, error) {
	cursor, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	var purchases []model.Purchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return purchases, nil
}

// ListByEmail returns all purchases made with the given email.
func (r *PurchaseRepository) ListByEmail(ctx context.Context, email string) ([]model.Purchase, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("list purchases by email: %w", err)
	}
	var purchases []model.Purchase
	if err := cursor.All(ctx, &purchases); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return purchases, nil
}

// GetByClassAndEmail returns the purchase for a (class, email) pair or
// ErrNotFound.
func (r *PurchaseRepository) GetByClassAndEmail(ctx context.Context, classID primitive.ObjectID, email string) (*model.Purchase, error) {
	var p model.Purchase
	err := r.coll.FindOne(ctx, bson.M{"classId": classID, "email": email}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return &p, nil
}

// Create inserts a new purchase record. A unique-index violation on
// (classId, email) surfaces as ErrAlreadyEnrolled.
func (r *PurchaseRepository) Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	res, err := r.coll.InsertOne(ctx, purchase)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("insert purchase: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		purchase.ID = oid
	}
	return &purchase, nil
}

// DeleteByID removes the purchase with the given id. Returns ErrNotFound
// when nothing was deleted.
func (r *PurchaseRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
