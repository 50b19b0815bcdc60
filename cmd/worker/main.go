package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facturation-service/internal/app/config"
	"facturation-service/internal/app/drivers/database"
	"facturation-service/internal/app/drivers/logger"
	"facturation-service/internal/app/drivers/messaging"
	"facturation-service/internal/app/drivers/storage"
	"facturation-service/internal/app/services/core/reference"
	"facturation-service/internal/app/services/core/rules"
	"facturation-service/internal/app/services/core/runs"
	"facturation-service/internal/app/services/core/validation"
	"facturation-service/internal/app/services/shared/locker"
	"facturation-service/internal/app/services/shared/redis"
	"facturation-service/internal/app/services/shared/runqueue"
	minioStorage "facturation-service/internal/app/services/shared/storage"
	"facturation-service/internal/pkg/phi"
)

func main() {
	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()

	zapLogger := logger.NewZapLogger(driverConfig, internalConfig)
	defer zapLogger.Sync()

	location, err := time.LoadLocation(internalConfig.App.Timezone)
	if err != nil {
		log.Fatalf("Error loading location: %v", err)
	}
	time.Local = location

	phi.Configure(internalConfig.Phi.RedactionKey)

	mongoClient := database.NewMongoDB(driverConfig)
	redisClient := database.NewRedisClient(driverConfig)
	rabbitConn := messaging.NewRabbitMQ(driverConfig)
	minioClient := storage.NewMinioClient(driverConfig)

	dbName := driverConfig.MongoDB.DbName

	redisRepository := redis.NewRedisRepository(redisClient)
	lockerService := locker.NewLockService(redisRepository, zapLogger)
	queueService, err := runqueue.NewService(rabbitConn, zapLogger, internalConfig.RunQueue.MaxQueue)
	if err != nil {
		log.Fatalf("Failed to initialize run queue: %v", err)
	}
	storageService := minioStorage.NewMinioStorage(minioClient, internalConfig.Export.BucketName)

	ruleRepository := rules.NewRuleMongoRepository(mongoClient, dbName)
	ruleUsecase := rules.NewRuleUsecase(ruleRepository, zapLogger)

	referenceRepository := reference.NewReferenceMongoRepository(mongoClient, dbName)
	referenceUsecase := reference.NewReferenceUsecase(referenceRepository, redisRepository, zapLogger)

	dispatcher := validation.NewDispatcher(zapLogger)

	runRepository := runs.NewRunMongoRepository(mongoClient, dbName)
	recordRepository := runs.NewBillingRecordMongoRepository(mongoClient, dbName)
	findingRepository := runs.NewFindingMongoRepository(mongoClient, dbName)
	runUsecase := runs.NewRunUsecase(
		runRepository,
		recordRepository,
		findingRepository,
		ruleUsecase,
		referenceUsecase,
		dispatcher,
		queueService,
		storageService,
		internalConfig,
		zapLogger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker := runs.NewWorker(zapLogger, internalConfig, lockerService, queueService, runUsecase)
	stopWorker := worker.Start(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	stopWorker()
	cancel()

	log.Println("Worker exiting")
}
