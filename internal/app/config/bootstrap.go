package config

import (
	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Bootstrap carries the shared infrastructure handed to the composition root.
type Bootstrap struct {
	Router         *chi.Mux
	MongoClient    *mongo.Client
	RedisClient    *redis.Client
	RabbitMQConn   *amqp091.Connection
	MinioClient    *minio.Client
	Logger         *zap.Logger
	InternalConfig *InternalConfig
	DriverConfig   *DriverConfig
}
