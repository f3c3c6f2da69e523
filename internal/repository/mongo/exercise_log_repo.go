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

const exerciseLogCollectionName = "exercise_logs"

// mongoExerciseLogRepository implements repository.ExerciseLogRepository
type mongoExerciseLogRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseLogRepository creates a new ExerciseLog repository.
func NewMongoExerciseLogRepository(db *mongo.Database) repository.ExerciseLogRepository {
	return &mongoExerciseLogRepository{
		collection: db.Collection(exerciseLogCollectionName),
	}
}

// CreateMany inserts one session's exercise logs as a single batch, in
// the order given. InsertMany is not transactional: a failure part-way
// leaves the earlier documents in place, which callers report through
// their commit descriptor rather than rolling back.
func (r *mongoExerciseLogRepository) CreateMany(ctx context.Context, logs []domain.ExerciseLog) ([]primitive.ObjectID, error) {
	if len(logs) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(logs))
	ids := make([]primitive.ObjectID, len(logs))
	for i := range logs {
		if logs[i].SessionLogID == primitive.NilObjectID || logs[i].PrescriptionID == primitive.NilObjectID {
			return nil, errors.New("exercise log requires sessionLogId and prescriptionId")
		}
		if len(logs[i].RepsPerformed) != len(logs[i].LoadsUsed) {
			return nil, errors.New("repsPerformed and loadsUsed must have the same length")
		}
		logs[i].ID = primitive.NewObjectID()
		logs[i].CreatedAt = now
		ids[i] = logs[i].ID
		docs[i] = logs[i]
	}

	// Ordered inserts so a failure maps to a prefix of the batch.
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetBySessionLogID retrieves the exercise logs of one session, in
// insertion (prescription position) order.
func (r *mongoExerciseLogRepository) GetBySessionLogID(ctx context.Context, sessionLogID primitive.ObjectID) ([]domain.ExerciseLog, error) {
	var logs []domain.ExerciseLog
	filter := bson.M{"sessionLogId": sessionLogID}
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

// EnsureExerciseLogIndexes creates necessary indexes. Call during startup.
func EnsureExerciseLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionLogId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
