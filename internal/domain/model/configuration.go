package model

import "time"

// AgentConfiguration is a named, user-owned preset describing how to call one
// provider/model. The API key is stored encrypted; configurations are soft
// deleted (Active=false) so historical jobs keep a valid reference.
type AgentConfiguration struct {
	ID          string
	UserID      string
	Name        string
	Description string

	Provider    string
	ModelName   string
	APIEndpoint string

	APIKeyEncrypted string
	Temperature     float64
	MaxTokens       int
	SystemPrompt    string

	CanCreateBlocks   bool
	CanEditBlocks     bool
	CanSearchWeb      bool
	DailyRequestLimit int

	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

const (
	DefaultTemperature       = 0.7
	DefaultEditTemperature   = 0.3
	DefaultMaxTokens         = 2000
	DefaultDailyRequestLimit = 50
)
