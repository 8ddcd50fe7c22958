// internal/workers/appointment/evaluate-feasibility/models.go
package evaluatefeasibility

import "appointment-workers/internal/models"

// Input is the candidate form carried as flat process variables.
type Input struct {
	models.CandidateInput
}

// Output flattens the result card into process variables so gateways can
// route on isPossible and verdict.
type Output struct {
	models.FeasibilityView
	Verdict string `json:"verdict"`
}

const (
	VerdictPossible = "possible"
	VerdictAtRisk   = "at-risk"
	VerdictNoRound  = "no-round"
)
