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

type BillingRecordMongoRepository struct {
	Collection *mongo.Collection
}

func NewBillingRecordMongoRepository(db *mongo.Client, dbName string) contracts.BillingRecordRepository {
	return &BillingRecordMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionBillingRecords),
	}
}

func (repo *BillingRecordMongoRepository) InsertMany(ctx context.Context, records []models.BillingRecord) error {
	documents := make([]interface{}, len(records))
	for i := range records {
		documents[i] = records[i]
	}
	_, err := repo.Collection.InsertMany(ctx, documents)
	if err != nil {
		return exceptions.ErrMongoDBInsertDocument(err)
	}
	return nil
}

func (repo *BillingRecordMongoRepository) FindByRunID(ctx context.Context, runID string) ([]models.BillingRecord, error) {
	var records []models.BillingRecord
	opts := options.Find().SetSort(bson.D{{Key: "recordNumber", Value: 1}})
	cursor, err := repo.Collection.Find(ctx, bson.M{"runId": runID}, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	err = cursor.All(ctx, &records)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return records, nil
}

func (repo *BillingRecordMongoRepository) DeleteByRunID(ctx context.Context, runID string) error {
	_, err := repo.Collection.DeleteMany(ctx, bson.M{"runId": runID})
	if err != nil {
		return exceptions.ErrMongoDBDeleteDocument(err)
	}
	return nil
}
