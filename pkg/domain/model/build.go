package model

import "time"

// BuildValueBranch is the build value key carrying the pushed branch name
const BuildValueBranch = "branch"

// BuildRequest is returned to the orchestrator by a poll
type BuildRequest struct {
	ID          string            `json:"id"`
	Source      string            `json:"source"`
	Condition   BuildCondition    `json:"condition"`
	RequestedBy string            `json:"requested_by"`
	Values      map[string]string `json:"values"`
	RequestedAt time.Time         `json:"requested_at"`
}

// Branch returns the branch build value
func (r *BuildRequest) Branch() string {
	return r.Values[BuildValueBranch]
}
