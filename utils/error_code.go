package utils

// Numeric API error codes carried alongside HTTP statuses so clients can
// branch without parsing messages.
const (
	ErrorTokenAuthFail      = 1001
	ErrorInvalidMedia       = 2001
	ErrorPayloadTooLarge    = 2002
	ErrorInvalidCursor      = 2003
	ErrorStorageUnavailable = 3001
	ErrorQuotaExceeded      = 3002
	ErrorMetadataWrite      = 3003
	ErrorWriteConflict      = 3004
	ErrorInternal           = 5000
)
