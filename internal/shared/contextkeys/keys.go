package contextkeys

// contextKey is an unexported type to prevent collisions with context keys defined in
// other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "showcase-platform context key " + string(c)
}

// Identity of the authenticated caller.
const (
	UserIDKey    = contextKey("userID")
	UserEmailKey = contextKey("userEmail")
	UserRoleKey  = contextKey("userRole")
	SessionIDKey = contextKey("sessionID")
	ClaimsKey    = contextKey("claims")
	TokenKey     = contextKey("token")
)

// Request metadata.
const (
	RequestIDKey = contextKey("requestID")
	ClientIPKey  = contextKey("clientIP")
	UserAgentKey = contextKey("userAgent")
)

// Logging helpers.
const (
	ComponentKey = contextKey("component")
	OperationKey = contextKey("operation")
)
