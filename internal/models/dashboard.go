package models

import "time"

// DashboardSummary is everything the dashboard shows for the logged-in user.
type DashboardSummary struct {
	WelcomeName string          `json:"welcomeName"`
	Initials    string          `json:"initials"`
	Stats       EnrollmentStats `json:"stats"`
	Recent      []Enrollment    `json:"recent"`
}

// ClientMetrics is a point-in-time view of the client's own instrumentation.
type ClientMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	RequestFailures          uint64    `json:"requestFailures"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	EnrollmentsCreated       uint64    `json:"enrollmentsCreated"`
	EnrollmentConflicts      uint64    `json:"enrollmentConflicts"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
