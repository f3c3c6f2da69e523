package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload stores metadata about a file a student attached to a logged
// session (e.g. a form-check video). The actual file resides in S3.
type Upload struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionLogID primitive.ObjectID `bson:"sessionLogId" json:"sessionLogId"` // Link back to the session log
	StudentID    primitive.ObjectID `bson:"studentId" json:"studentId"`       // Who uploaded
	TrainerID    primitive.ObjectID `bson:"trainerId" json:"trainerId"`       // Denormalized for trainer-side access
	S3ObjectKey  string             `bson:"s3ObjectKey" json:"-"`             // Bucket key, internal use only
	FileName     string             `bson:"fileName" json:"fileName"`         // Original filename provided by the student
	ContentType  string             `bson:"contentType" json:"contentType"`   // MIME type (e.g., "video/mp4")
	Size         int64              `bson:"size" json:"size"`                 // File size in bytes
	UploadedAt   time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
