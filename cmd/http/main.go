package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"facturation-service/internal/app/config"
	"facturation-service/internal/app/delivery/http/middlewares"
	"facturation-service/internal/app/delivery/http/routers"
	"facturation-service/internal/app/drivers/database"
	"facturation-service/internal/app/drivers/logger"
	"facturation-service/internal/app/drivers/messaging"
	"facturation-service/internal/app/drivers/storage"
	"facturation-service/internal/app/services/core/reference"
	"facturation-service/internal/app/services/core/rules"
	"facturation-service/internal/app/services/core/runs"
	"facturation-service/internal/app/services/core/validation"
	"facturation-service/internal/app/services/shared/redis"
	"facturation-service/internal/app/services/shared/runqueue"
	minioStorage "facturation-service/internal/app/services/shared/storage"
	"facturation-service/internal/pkg/phi"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
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
	chiRouter := chi.NewRouter()

	bootstrapTheApp(config.Bootstrap{
		Router:         chiRouter,
		MongoClient:    mongoClient,
		RedisClient:    redisClient,
		RabbitMQConn:   rabbitConn,
		MinioClient:    minioClient,
		Logger:         zapLogger,
		DriverConfig:   driverConfig,
		InternalConfig: internalConfig,
	})

	server := &http.Server{
		Addr:    internalConfig.App.Port,
		Handler: chiRouter,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c

	logrus.Println("Waiting for pending requests that already received by server to be processed..")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(internalConfig.App.ShutdownTimeout),
	)
	defer cancel()

	err = server.Shutdown(shutdownCtx)
	if err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func bootstrapTheApp(bootstrap config.Bootstrap) {
	dbName := bootstrap.DriverConfig.MongoDB.DbName

	// Shared services
	redisRepository := redis.NewRedisRepository(bootstrap.RedisClient)
	queueService, err := runqueue.NewService(bootstrap.RabbitMQConn, bootstrap.Logger, bootstrap.InternalConfig.RunQueue.MaxQueue)
	if err != nil {
		log.Fatalf("Failed to initialize run queue: %v", err)
	}
	storageService := minioStorage.NewMinioStorage(bootstrap.MinioClient, bootstrap.InternalConfig.Export.BucketName)

	// Middlewares
	httpMiddlewares := &middlewares.Middlewares{
		Log:            bootstrap.Logger,
		InternalConfig: bootstrap.InternalConfig,
	}

	// Rules
	ruleRepository := rules.NewRuleMongoRepository(bootstrap.MongoClient, dbName)
	ruleUsecase := rules.NewRuleUsecase(ruleRepository, bootstrap.Logger)
	ruleController := rules.NewRuleController(bootstrap.Logger, ruleUsecase)

	// Reference data
	referenceRepository := reference.NewReferenceMongoRepository(bootstrap.MongoClient, dbName)
	referenceUsecase := reference.NewReferenceUsecase(referenceRepository, redisRepository, bootstrap.Logger)

	// Validation engine
	dispatcher := validation.NewDispatcher(bootstrap.Logger)

	// Runs
	runRepository := runs.NewRunMongoRepository(bootstrap.MongoClient, dbName)
	recordRepository := runs.NewBillingRecordMongoRepository(bootstrap.MongoClient, dbName)
	findingRepository := runs.NewFindingMongoRepository(bootstrap.MongoClient, dbName)
	runUsecase := runs.NewRunUsecase(
		runRepository,
		recordRepository,
		findingRepository,
		ruleUsecase,
		referenceUsecase,
		dispatcher,
		queueService,
		storageService,
		bootstrap.InternalConfig,
		bootstrap.Logger,
	)
	runController := runs.NewRunController(bootstrap.Logger, runUsecase)

	routers.SetupRoutes(bootstrap.Router, bootstrap.InternalConfig, httpMiddlewares, runController, ruleController)
}
