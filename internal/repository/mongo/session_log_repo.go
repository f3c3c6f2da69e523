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

const sessionLogCollectionName = "session_logs"

// mongoSessionLogRepository implements repository.SessionLogRepository
type mongoSessionLogRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionLogRepository creates a new SessionLog repository.
func NewMongoSessionLogRepository(db *mongo.Database) repository.SessionLogRepository {
	return &mongoSessionLogRepository{
		collection: db.Collection(sessionLogCollectionName),
	}
}

// Create appends a new session log. There is deliberately no uniqueness
// constraint on (dayId, studentId): re-completing a day writes a new
// historical record.
func (r *mongoSessionLogRepository) Create(ctx context.Context, log *domain.SessionLog) (primitive.ObjectID, error) {
	if log.DayID == primitive.NilObjectID || log.StudentID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("session log requires dayId and studentId")
	}
	log.ID = primitive.NewObjectID()
	log.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session log ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session log by its ID.
func (r *mongoSessionLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionLog, error) {
	var log domain.SessionLog
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&log)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &log, nil
}

// GetByStudentID retrieves a student's full session history, newest first.
func (r *mongoSessionLogRepository) GetByStudentID(ctx context.Context, studentID primitive.ObjectID) ([]domain.SessionLog, error) {
	return r.find(ctx, bson.M{"studentId": studentID})
}

// GetByDayAndStudentID retrieves every log a student has recorded against
// one scheduled day, newest first. More than one entry means the day was
// re-completed.
func (r *mongoSessionLogRepository) GetByDayAndStudentID(ctx context.Context, dayID, studentID primitive.ObjectID) ([]domain.SessionLog, error) {
	return r.find(ctx, bson.M{"dayId": dayID, "studentId": studentID})
}

func (r *mongoSessionLogRepository) find(ctx context.Context, filter bson.M) ([]domain.SessionLog, error) {
	var logs []domain.SessionLog
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

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

// EnsureSessionLogIndexes creates necessary indexes. Call during startup.
func EnsureSessionLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "studentId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// Intentionally NOT unique; see Create.
			Keys:    bson.D{{Key: "dayId", Value: 1}, {Key: "studentId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
