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

const scheduledDayCollectionName = "scheduled_days"

// mongoScheduledDayRepository implements repository.ScheduledDayRepository
type mongoScheduledDayRepository struct {
	collection *mongo.Collection
}

// NewMongoScheduledDayRepository creates a new ScheduledDay repository.
func NewMongoScheduledDayRepository(db *mongo.Database) repository.ScheduledDayRepository {
	return &mongoScheduledDayRepository{
		collection: db.Collection(scheduledDayCollectionName),
	}
}

// Create inserts a new scheduled day. Range and duplicate-date checks
// happen in the schedule package before a draft reaches this point.
func (r *mongoScheduledDayRepository) Create(ctx context.Context, day *domain.ScheduledDay) (primitive.ObjectID, error) {
	if day.PlanID == primitive.NilObjectID || day.Date.IsZero() {
		return primitive.NilObjectID, errors.New("scheduled day requires planId and date")
	}
	day.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	day.CreatedAt = now
	day.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single scheduled day by its ID.
func (r *mongoScheduledDayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ScheduledDay, error) {
	var day domain.ScheduledDay
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&day)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &day, nil
}

// GetByPlanID retrieves all days scheduled within a plan, by date ascending.
func (r *mongoScheduledDayRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.ScheduledDay, error) {
	var days []domain.ScheduledDay
	filter := bson.M{"planId": planID}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return days, nil
}

// EnsureScheduledDayIndexes creates necessary indexes. Call during startup.
func EnsureScheduledDayIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// One session per calendar date per plan; backs the duplicate
			// check against concurrent writers the service-level validation
			// cannot see.
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
