package runs

import (
	"context"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FindingMongoRepository struct {
	Collection *mongo.Collection
}

func NewFindingMongoRepository(db *mongo.Client, dbName string) contracts.FindingRepository {
	return &FindingMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionFindings),
	}
}

func (repo *FindingMongoRepository) InsertMany(ctx context.Context, findings []models.Finding) error {
	if len(findings) == 0 {
		return nil
	}
	documents := make([]interface{}, len(findings))
	for i := range findings {
		documents[i] = findings[i]
	}
	_, err := repo.Collection.InsertMany(ctx, documents)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *FindingMongoRepository) FindByRunID(ctx context.Context, runID string) ([]models.Finding, error) {
	var findings []models.Finding
	opts := options.Find().SetSort(bson.D{{Key: "ruleId", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := repo.Collection.Find(ctx, bson.M{"runId": runID}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	err = cursor.All(ctx, &findings)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return findings, nil
}

func (repo *FindingMongoRepository) DeleteByRunID(ctx context.Context, runID string) error {
	_, err := repo.Collection.DeleteMany(ctx, bson.M{"runId": runID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}
