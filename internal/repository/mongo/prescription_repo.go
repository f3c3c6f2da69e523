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

const prescriptionCollectionName = "exercise_prescriptions"

// mongoPrescriptionRepository implements repository.PrescriptionRepository
type mongoPrescriptionRepository struct {
	collection *mongo.Collection
}

// NewMongoPrescriptionRepository creates a new ExercisePrescription repository.
func NewMongoPrescriptionRepository(db *mongo.Database) repository.PrescriptionRepository {
	return &mongoPrescriptionRepository{
		collection: db.Collection(prescriptionCollectionName),
	}
}

// Create inserts a new prescription. Position is assigned by the plan
// builder from authored order; the repository stores it as given.
func (r *mongoPrescriptionRepository) Create(ctx context.Context, p *domain.ExercisePrescription) (primitive.ObjectID, error) {
	if p.DayID == primitive.NilObjectID || p.Name == "" {
		return primitive.NilObjectID, errors.New("prescription requires dayId and name")
	}
	if p.Sets < 1 {
		return primitive.NilObjectID, errors.New("prescription requires at least one set")
	}
	p.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted prescription ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single prescription by its ID.
func (r *mongoPrescriptionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ExercisePrescription, error) {
	var p domain.ExercisePrescription
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByDayID retrieves all prescriptions of a day ordered by position.
func (r *mongoPrescriptionRepository) GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.ExercisePrescription, error) {
	var prescriptions []domain.ExercisePrescription
	filter := bson.M{"dayId": dayID}
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &prescriptions); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

// EnsurePrescriptionIndexes creates necessary indexes. Call during startup.
func EnsurePrescriptionIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Positions are unique and contiguous within a day
			Keys:    bson.D{{Key: "dayId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
