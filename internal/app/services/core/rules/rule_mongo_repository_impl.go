package rules

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

type RuleMongoRepository struct {
	Collection *mongo.Collection
}

func NewRuleMongoRepository(db *mongo.Client, dbName string) contracts.RuleRepository {
	return &RuleMongoRepository{
		Collection: db.Database(dbName).Collection(constvars.MongoCollectionRules),
	}
}

func (repo *RuleMongoRepository) FindAll(ctx context.Context) ([]models.RuleDefinition, error) {
	return repo.find(ctx, bson.M{})
}

func (repo *RuleMongoRepository) FindEnabled(ctx context.Context) ([]models.RuleDefinition, error) {
	return repo.find(ctx, bson.M{"enabled": true})
}

func (repo *RuleMongoRepository) find(ctx context.Context, filter bson.M) ([]models.RuleDefinition, error) {
	var rules []models.RuleDefinition
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := repo.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, exceptions.ErrMongoDBFindDocument(err)
	}
	err = cursor.All(ctx, &rules)
	if err != nil {
		return nil, exceptions.ErrMongoDBIterateDocuments(err)
	}
	return rules, nil
}
