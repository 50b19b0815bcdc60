package reference

import (
	"context"

	"facturation-service/internal/app/contracts"
	"facturation-service/internal/app/models"
	"facturation-service/internal/pkg/constvars"
	"facturation-service/internal/pkg/exceptions"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ReferenceMongoRepository struct {
	CodeCollection          *mongo.Collection
	EstablishmentCollection *mongo.Collection
}

func NewReferenceMongoRepository(db *mongo.Client, dbName string) contracts.ReferenceRepository {
	database := db.Database(dbName)
	return &ReferenceMongoRepository{
		CodeCollection:          database.Collection(constvars.MongoCollectionCodes),
		EstablishmentCollection: database.Collection(constvars.MongoCollectionEstablishments),
	}
}

func (repo *ReferenceMongoRepository) FindAllCodes(ctx context.Context) ([]models.Code, error) {
	var codes []models.Code
	cursor, err := repo.CodeCollection.Find(ctx, bson.M{"active": true})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	err = cursor.All(ctx, &codes)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return codes, nil
}

func (repo *ReferenceMongoRepository) FindAllEstablishments(ctx context.Context) ([]models.Establishment, error) {
	var establishments []models.Establishment
	cursor, err := repo.EstablishmentCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	err = cursor.All(ctx, &establishments)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return establishments, nil
}
