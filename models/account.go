package models

import "time"

// Account is a record-service account as stored server-side. Secret holds
// the argon2id hash of the account secret, never the secret itself.
type Account struct {
	ID         int64     `json:"id"`
	Login      string    `json:"login"`
	Secret     string    `json:"secret,omitempty"`
	RecordName string    `json:"record_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// Credentials is the register/login request body.
type Credentials struct {
	Login  string `json:"login"`
	Secret string `json:"secret"`
}
