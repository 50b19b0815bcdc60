package runs

import (
	"context"
	"time"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type RunMongoRepository struct {
	Collection *mongo.Collection
}

func NewRunMongoRepository(db *mongo.Client, dbName string) contracts.RunRepository {
	return &RunMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionValidationRuns),
	}
}

func (repo *RunMongoRepository) Insert(ctx context.Context, run *models.ValidationRun) error {
	_, err := repo.Collection.InsertOne(ctx, run)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *RunMongoRepository) FindByID(ctx context.Context, runID string) (*models.ValidationRun, error) {
	var run models.ValidationRun
	err := repo.Collection.FindOne(ctx, bson.M{"_id": runID}).Decode(&run)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	return &run, nil
}

func (repo *RunMongoRepository) UpdateStatus(ctx context.Context, runID string, status models.RunStatus, errorMessage string) error {
	update := bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}
	if errorMessage != "" {
		update["errorMessage"] = errorMessage
	}
	_, err := repo.Collection.UpdateOne(ctx, bson.M{"_id": runID}, bson.M{"$set": update})
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

// UpdateProgress only moves progress forward; a stale write never rolls a run
// back to an earlier checkpoint.
func (repo *RunMongoRepository) UpdateProgress(ctx context.Context, runID string, progress int) error {
	filter := bson.M{"_id": runID, "progress": bson.M{"$lt": progress}}
	update := bson.M{"$set": bson.M{
		"progress":  progress,
		"updatedAt": time.Now().UTC(),
	}}
	_, err := repo.Collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}

func (repo *RunMongoRepository) MarkCompleted(ctx context.Context, runID string, findingCount int, skippedRules []string) error {
	update := bson.M{"$set": bson.M{
		"status":         models.RunStatusCompleted,
		"progress":       models.ProgressResultsPersisted,
		"findingCount":   findingCount,
		"skippedRules":   skippedRules,
		"partialResults": len(skippedRules) > 0,
		"updatedAt":      time.Now().UTC(),
	}}
	_, err := repo.Collection.UpdateOne(ctx, bson.M{"_id": runID}, update)
	if err != nil {
		return exceptions.ErrMongoDBUpdateDocument(err)
	}
	return nil
}
