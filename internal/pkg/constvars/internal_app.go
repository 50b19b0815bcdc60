package constvars

const (
	MongoCollectionValidationRuns = "validation_runs"
	MongoCollectionBillingRecords = "billing_records"
	MongoCollectionFindings       = "validation_results"
	MongoCollectionRules          = "rules"
	MongoCollectionCodes          = "codes"
	MongoCollectionEstablishments = "establishments"
)

const (
	RedisKeyCodeCatalog       = "reference:codes"
	RedisKeyEstablishmentList = "reference:establishments"
	RedisKeyRunWorkerLock     = "validation:worker:lock"
)
