/*

This file contains the position health score types.

*/

package types

// HealthStatus is the closed five-value status derived from the overall
// health score via fixed 90/75/60/40 thresholds.
type HealthStatus string

const (
	StatusExcellent HealthStatus = "excellent"
	StatusGood      HealthStatus = "good"
	StatusWarning   HealthStatus = "warning" // displayed as "Fair"
	StatusDanger    HealthStatus = "danger"  // displayed as "Risky"
	StatusCritical  HealthStatus = "critical"
)

// HealthScore is the weighted health verdict for one position. All
// sub-scores and the overall score live in [0,100].
type HealthScore struct {
	Overall              int          `json:"overall"`
	Profitability        int          `json:"profitability"`
	FeePerformance       int          `json:"fee_performance"`
	LiquidityUtilization int          `json:"liquidity_utilization"`
	RiskMetrics          int          `json:"risk_metrics"`
	Status               HealthStatus `json:"status"`
}
