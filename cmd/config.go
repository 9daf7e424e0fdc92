package cmd

import "time"

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	WebhookEndpoint string

	DispatchBaseRadiusMeters float64
	DispatchMaxRadiusMeters  float64
	DispatchMaxCandidates    int
	DispatchMaxAttempts      int
	OfferTTL                 time.Duration

	DelayGrace          time.Duration
	DefaultDurationMins int

	AgentSharePercent int
}
