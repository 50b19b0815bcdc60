package constvars

const (
	LoggingRequestIDKey          = "request_id"
	LoggingRunIDKey              = "run_id"
	LoggingRuleIDKey             = "rule_id"
	LoggingRuleCategoryKey       = "rule_category"
	LoggingRecordsCountKey       = "records_count"
	LoggingRulesCountKey         = "rules_count"
	LoggingFindingsCountKey      = "findings_count"
	LoggingProgressKey           = "progress"
	LoggingStatusKey             = "status"
	LoggingRedisKey              = "redis_key"
	LoggingLockValueKey          = "lock_value"
	LoggingLockExpirationTimeKey = "lock_expiration_time"
	LoggingLockStoredValueKey    = "lock_stored_value"
	LoggingLockExpectedValueKey  = "lock_expected_value"
	LoggingMessageIDKey          = "message_id"
	LoggingFailedCountKey        = "failed_count"
	LoggingObjectNameKey         = "object_name"
	LoggingMethodKey             = "method"
	LoggingEndpointKey           = "endpoint"
	LoggingRemoteAddrKey         = "remote_addr"
	LoggingUserAgentKey          = "user_agent"
	LoggingQueryKey              = "query"
	LoggingStatusCodeKey         = "status_code"
	LoggingDurationKey           = "duration"
	LoggingSuccessKey            = "success"
	LoggingResponseCountKey      = "response_count"
)
