package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	// External service errors
	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Exchange connector error codes
const (
	CodeConnectorError            Code = "CONNECTOR_ERROR"
	CodeConnectorAuthFailed       Code = "CONNECTOR_AUTH_FAILED"
	CodeMarketsLoadFailed         Code = "MARKETS_LOAD_FAILED"
	CodeTickerFetchFailed         Code = "TICKER_FETCH_FAILED"
	CodeBalanceFetchFailed        Code = "BALANCE_FETCH_FAILED"
	CodeOrderRejected             Code = "ORDER_REJECTED"
	CodeDepositAddressUnavailable Code = "DEPOSIT_ADDRESS_UNAVAILABLE"
	CodeWithdrawFailed            Code = "WITHDRAW_FAILED"

	// WebSocket errors
	CodeWebSocketConnectionError Code = "WEBSOCKET_CONNECTION_ERROR"
	CodeWebSocketClosed          Code = "WEBSOCKET_CLOSED"
)

// Arbitrage engine error codes
const (
	CodeSlippageExceeded     Code = "SLIPPAGE_EXCEEDED"
	CodeTransferTimeout      Code = "TRANSFER_TIMEOUT"
	CodeAllPricesUnavailable Code = "ALL_PRICES_UNAVAILABLE"
	CodeExecutionInFlight    Code = "EXECUTION_IN_FLIGHT"
	CodeInvalidOrderSize     Code = "INVALID_ORDER_SIZE"

	// Circuit breaker errors
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)
