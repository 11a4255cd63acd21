package model

import "time"

// RunRecord is one remote evaluation as stored in the run history.
type RunRecord struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Kind      ResultKind `json:"kind"`
	Label     string     `json:"label"`
	Galaxy    string     `json:"galaxy"`
	RMS       *float64   `json:"rms_kms"`
	CreatedAt time.Time  `json:"created_at"`
}
