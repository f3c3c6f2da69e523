// internal/repository/mongo/plan_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"trainup/training-app/internal/domain"
	"trainup/training-app/internal/repository"
)

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan header.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.StudentID == primitive.NilObjectID || plan.TrainerID == primitive.NilObjectID || plan.Name == "" {
		return primitive.NilObjectID, errors.New("plan requires studentId, trainerId, and name")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	var plan domain.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetByTrainerID retrieves all plans authored by a trainer, newest first.
func (r *mongoPlanRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.findSortedByCreation(ctx, bson.M{"trainerId": trainerID})
}

// GetByStudentID retrieves all plans for a student, newest first.
func (r *mongoPlanRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	return r.findSortedByCreation(ctx, bson.M{"studentId": studentID})
}

// GetActiveByStudentID retrieves a student's active plans, newest first.
// The today resolver only consults the first entry.
func (r *mongoPlanRepository) GetActiveByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.Plan, error) {
	return r.findSortedByCreation(ctx, bson.M{"studentId": studentID, "isActive": true})
}

// GetByStudentAndTrainerID retrieves all plans a trainer authored for one
// student, newest first. The filter doubles as an ownership check.
func (r *mongoPlanRepository) GetByStudentAndTrainerID(ctx context.Context, studentID, trainerID primitive.ObjectID) ([]domain.Plan, error) {
	return r.findSortedByCreation(ctx, bson.M{"studentId": studentID, "trainerId": trainerID})
}

func (r *mongoPlanRepository) findSortedByCreation(ctx context.Context, filter bson.M) ([]domain.Plan, error) {
	var plans []domain.Plan
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Empty slice when nothing matches; not an error.
	return plans, nil
}

// SetActive flips a plan's active flag.
func (r *mongoPlanRepository) SetActive(ctx context.Context, planID primitive.ObjectID, active bool) error {
	if planID == primitive.NilObjectID {
		return errors.New("plan ID is required")
	}
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes. Call during startup.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Main trainer query: plans per student, newest first
			Keys:    bson.D{{Key: "trainerId", Value: 1}, {Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Today resolver: active plans for a student
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "isActive", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
