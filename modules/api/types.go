package api

// LoginRequest carries a credential pair.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateEmployeeRequest carries the onboarding fields for a new employee.
type CreateEmployeeRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Title    string `json:"title"`
	Position string `json:"position"`
	Details  string `json:"details"`
}

// UpdateEmployeeRequest carries a partial profile edit. Absent fields are
// left untouched.
type UpdateEmployeeRequest struct {
	FullName *string `json:"full_name"`
	Title    *string `json:"title"`
	Position *string `json:"position"`
	Details  *string `json:"details"`
	Role     *string `json:"role"`
	Active   *bool   `json:"active"`
}

// CreateTaskRequest carries a new task assignment. Dates use YYYY-MM-DD.
type CreateTaskRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	AssigneeID   string `json:"assignee_id"`
	StartDate    string `json:"start_date"`
	DeadlineDate string `json:"deadline_date"`
}

// UpdateTaskRequest carries a partial task edit. Status is absent on
// purpose; transitions go through the status endpoint.
type UpdateTaskRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	AssigneeID   *string `json:"assignee_id"`
	StartDate    *string `json:"start_date"`
	DeadlineDate *string `json:"deadline_date"`
}

// UpdateStatusRequest moves a task to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the uniform error payload. Error carries the fault
// taxonomy code the status was derived from.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
