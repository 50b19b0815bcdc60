package constvars

// Client messages are safe to return to callers. Dev messages go to logs only
// and must never carry PHI.
const (
	ErrClientCannotProcessRequest          = "We cannot process your request, please try again"
	ErrClientSomethingWrongWithApplication = "Something is wrong with the application, please contact the administrator"
	ErrClientServerLongRespond             = "Server takes too long to respond, please try again"
	ErrClientRunNotFound                   = "Validation run not found"
	ErrClientRunNotFinished                = "Validation run has not finished yet"
	ErrClientEmptyRecordBatch              = "The submitted batch contains no billing records"
)

const (
	ErrDevValidationFailed          = "Request validation failed"
	ErrDevCannotParseJSON           = "Cannot parse JSON data"
	ErrDevCannotMarshalJSON         = "Cannot marshal data into JSON"
	ErrDevServerDeadlineExceeded    = "Server deadline exceeded"
	ErrDevRunNotFound               = "Validation run does not exist"
	ErrDevRunNotFinished            = "Validation run is not in a terminal state"
	ErrDevEmptyRecordBatch          = "Record batch is empty"
	ErrDevMalformedRuleCondition    = "Rule condition payload does not match its category shape"
	ErrDevAllRulesFailed            = "Every evaluated rule failed, run has no usable result"
	ErrDevMongoDBFindDocument       = "Failed to find document(s)"
	ErrDevMongoDBInsertDocument     = "Failed to insert document(s)"
	ErrDevMongoDBUpdateDocument     = "Failed to update document"
	ErrDevMongoDBDeleteDocument     = "Failed to delete document(s)"
	ErrDevMongoDBIterateDocuments   = "Failed to iterate documents"
	ErrDevRedisGet                  = "Failed to get data from redis"
	ErrDevRedisSet                  = "Failed to set data to redis"
	ErrDevRedisDelete               = "Failed to delete data from redis"
	ErrDevRedisSetNX                = "Failed to acquire redis lock"
	ErrDevRedisUnlock               = "Failed to release redis lock"
	ErrDevQueuePublish              = "Failed to publish message to queue"
	ErrDevQueueConsume              = "Failed to consume message from queue"
	ErrDevQueueAck                  = "Failed to acknowledge queue message"
	ErrDevStorageUpload             = "Failed to upload object to storage"
)
