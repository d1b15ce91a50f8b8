package enum

import (
	"encoding/json"
)

// SubmissionState represents where an invoice submission currently is
type SubmissionState int

const (
	SubmissionStateIdle       SubmissionState = 0
	SubmissionStateValidating SubmissionState = 1
	SubmissionStateSubmitting SubmissionState = 2
	SubmissionStateSucceeded  SubmissionState = 3
	SubmissionStateFailed     SubmissionState = 4
)

func (s SubmissionState) String() string {
	names := [...]string{"Idle", "Validating", "Submitting", "Succeeded", "Failed"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Idle"
	}
	return names[s]
}

// CanSubmit reports whether a new submission may start from this state
func (s SubmissionState) CanSubmit() bool {
	return s != SubmissionStateValidating && s != SubmissionStateSubmitting
}

func (s SubmissionState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
