package reporting

import (
	"github.com/KhaledAOsman/empower-task/domain/metrics"
	"github.com/KhaledAOsman/empower-task/domain/policy"
)

// EmployeeMetricsRequest asks for one employee's performance summary.
type EmployeeMetricsRequest struct {
	Actor      policy.Actor `json:"actor"`
	EmployeeID string       `json:"employee_id"`
}

// EmployeeMetricsResponse is the summary served to callers. The embedded
// figures marshal flat, so the wire shape stays a single JSON object.
type EmployeeMetricsResponse struct {
	EmployeeID string `json:"employee_id"`
	metrics.Summary
}
