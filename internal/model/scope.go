package model

// Scope carries the caller identity through use cases.
type Scope struct {
	UserID   int64 // Telegram user ID
	Username string
}

// Environment is the deployment environment name.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)
