package dto

// LoginRequest represents a login request. Role selects the access tier;
// manager and superadmin logins additionally require an owner bearer
// token on the request.
type LoginRequest struct {
	Role     string `json:"role" binding:"required,oneof=tenant_owner fleet_manager driver superadmin"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a login response
type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

// SessionInfo describes the caller's current session
type SessionInfo struct {
	Role      string `json:"role"`
	Name      string `json:"name"`
	SubjectID uint   `json:"subjectId"`
}
