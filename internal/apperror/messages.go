package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	// General validation
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	// Configuration
	CodeConfigurationError: "Configuration error",

	// External service errors
	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	// System errors
	CodeInternalError: "Internal error",
	CodeUnknownError:  "An unknown error occurred",

	// Exchange connector errors
	CodeConnectorError:            "Exchange connector call failed",
	CodeConnectorAuthFailed:       "Exchange authentication failed",
	CodeMarketsLoadFailed:         "Failed to load market metadata",
	CodeTickerFetchFailed:         "Failed to fetch ticker data",
	CodeBalanceFetchFailed:        "Failed to fetch account balance",
	CodeOrderRejected:             "Exchange rejected the order",
	CodeDepositAddressUnavailable: "Deposit address unavailable",
	CodeWithdrawFailed:            "Withdrawal request failed",

	// WebSocket errors
	CodeWebSocketConnectionError: "WebSocket connection error",
	CodeWebSocketClosed:          "WebSocket connection closed",

	// Arbitrage engine errors
	CodeSlippageExceeded:     "Observed price moved beyond slippage tolerance",
	CodeTransferTimeout:      "Funds did not arrive within the transfer deadline",
	CodeAllPricesUnavailable: "No exchange quotes a price for this symbol",
	CodeExecutionInFlight:    "An execution for this symbol is already in flight",
	CodeInvalidOrderSize:     "Invalid order size",

	// Circuit breaker errors
	CodeCircuitOpen: "Circuit breaker is open",
}
