package globals

// Context keys
type ContextKey string

const UserIDKey ContextKey = "userId"
const UserNameKey ContextKey = "userName"
const RoleKey ContextKey = "role"
