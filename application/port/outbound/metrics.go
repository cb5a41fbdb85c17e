package outbound

// WorkflowMetrics records admin workflow outcomes.
type WorkflowMetrics interface {
	BootstrapAttempt(outcome string)
	RequestSubmitted(outcome string)
	RequestReviewed(action, outcome string)
	OrphanedRolesCleaned(count int)
	NotificationFailed(kind string)
}
