// Package health provides liveness and readiness probes for the keywords
// service.
//
// # Endpoints
//
//   - /health: the process is running
//   - /ready: every registered check passes, e.g. the rule cache holds a
//     fresh rule set
//   - /version: build information
//
// # Usage
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("rules", health.RulesCheck(ruleCache))
//
//	r.Get("/health", checker.LivenessHandler())
//	r.Get("/ready", checker.ReadinessHandler())
//
// Checks run concurrently, each bounded by the checker's timeout. A check
// that times out is reported unhealthy.
package health
