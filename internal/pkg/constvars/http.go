package constvars

import "net/http"

const (
	HeaderContentType   = "Content-Type"
	HeaderRequestID     = "X-Request-Id"
	MIMEApplicationJSON = "application/json"
)

const (
	StatusOK                  = http.StatusOK
	StatusCreated             = http.StatusCreated
	StatusAccepted            = http.StatusAccepted
	StatusBadRequest          = http.StatusBadRequest
	StatusNotFound            = http.StatusNotFound
	StatusConflict            = http.StatusConflict
	StatusInternalServerError = http.StatusInternalServerError
	StatusGatewayTimeout      = http.StatusGatewayTimeout
)

const (
	URLParamRunID = "run_id"
)

type contextKey string

const (
	CONTEXT_REQUEST_ID_KEY contextKey = "request_id"
)
