package globals

// Context keys
type ContextKey string

const RoleKey ContextKey = "role"
const UserIDKey ContextKey = "userId"
const RequestIDKey ContextKey = "requestId"
const TokenIDKey ContextKey = "tokenId"

// Roles
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)
