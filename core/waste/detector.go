package waste

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"gpu-spend/core/aggregate"
	"gpu-spend/core/output"
	"gpu-spend/core/types"
	"gpu-spend/internal/logging"
)

// Report is a complete waste analysis. All totals and groupings are
// computed from the alert list, never stored.
type Report struct {
	GeneratedAt            time.Time `json:"generated_at"`
	TotalInstancesAnalyzed int       `json:"total_instances_analyzed"`
	Alerts                 []*Alert  `json:"alerts"`
}

// TotalDailyWaste sums estimated waste per day across alerts
func (r *Report) TotalDailyWaste() float64 {
	total := 0.0
	for _, a := range r.Alerts {
		total += a.EstimatedWastePerDay
	}
	return total
}

// TotalMonthlyWaste projects total daily waste to 30 days
func (r *Report) TotalMonthlyWaste() float64 {
	return r.TotalDailyWaste() * 30
}

// BySeverity groups alerts of one severity
func (r *Report) BySeverity(severity Severity) []*Alert {
	var alerts []*Alert
	for _, a := range r.Alerts {
		if a.Severity == severity {
			alerts = append(alerts, a)
		}
	}
	return alerts
}

// ByType groups alerts by waste type
func (r *Report) ByType() map[WasteType][]*Alert {
	grouped := make(map[WasteType][]*Alert)
	for _, a := range r.Alerts {
		grouped[a.WasteType] = append(grouped[a.WasteType], a)
	}
	return grouped
}

// ByProvider groups alerts by the offending instance's provider
func (r *Report) ByProvider() map[string][]*Alert {
	grouped := make(map[string][]*Alert)
	for _, a := range r.Alerts {
		grouped[a.Instance.Provider] = append(grouped[a.Instance.Provider], a)
	}
	return grouped
}

// Document flattens the report for transport
func (r *Report) Document() output.Document {
	byType := make(output.Document)
	for wasteType, alerts := range r.ByType() {
		daily := 0.0
		for _, a := range alerts {
			daily += a.EstimatedWastePerDay
		}
		byType[string(wasteType)] = output.Document{
			"count":       len(alerts),
			"daily_waste": output.Currency(daily),
		}
	}

	alertDocs := make([]output.Document, 0, len(r.Alerts))
	for _, a := range r.Alerts {
		alertDocs = append(alertDocs, a.Document())
	}

	return output.Document{
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
		"summary": output.Document{
			"instances_analyzed": r.TotalInstancesAnalyzed,
			"total_alerts":       len(r.Alerts),
			"critical_alerts":    len(r.BySeverity(SeverityCritical)),
			"high_alerts":        len(r.BySeverity(SeverityHigh)),
			"daily_waste":        output.Currency(r.TotalDailyWaste()),
			"monthly_waste":      output.Currency(r.TotalMonthlyWaste()),
		},
		"by_type": byType,
		"alerts":  alertDocs,
	}
}

// Detector runs the rule set against instances and assembles ranked
// reports
type Detector struct {
	aggregator *aggregate.Aggregator
	rules      []Rule
}

// NewDetector creates a detector with the default rule set
func NewDetector(aggregator *aggregate.Aggregator) *Detector {
	return &Detector{
		aggregator: aggregator,
		rules:      DefaultRules(),
	}
}

// NewDetectorWithRules creates a detector with a custom rule set
func NewDetectorWithRules(aggregator *aggregate.Aggregator, rules []Rule) *Detector {
	return &Detector{
		aggregator: aggregator,
		rules:      rules,
	}
}

// AddRule appends a custom rule
func (d *Detector) AddRule(rule Rule) {
	d.rules = append(d.rules, rule)
}

// RemoveRule drops all rules of a waste type
func (d *Detector) RemoveRule(wasteType WasteType) {
	kept := d.rules[:0]
	for _, r := range d.rules {
		if r.Type != wasteType {
			kept = append(kept, r)
		}
	}
	d.rules = kept
}

// EnableRule enables rules of a waste type
func (d *Detector) EnableRule(wasteType WasteType) {
	d.setEnabled(wasteType, true)
}

// DisableRule disables rules of a waste type
func (d *Detector) DisableRule(wasteType WasteType) {
	d.setEnabled(wasteType, false)
}

func (d *Detector) setEnabled(wasteType WasteType, enabled bool) {
	for i := range d.rules {
		if d.rules[i].Type == wasteType {
			d.rules[i].Enabled = enabled
		}
	}
}

// AnalyzeInstance runs all enabled rules against one instance. A rule
// that fails is skipped for this instance only.
func (d *Detector) AnalyzeInstance(instance *types.GPUInstance) []*Alert {
	var alerts []*Alert

	for _, rule := range d.rules {
		if !rule.Enabled {
			continue
		}

		alert, err := rule.Evaluate(instance, rule.Threshold)
		if err != nil {
			logging.Warn("rule evaluation failed, skipping",
				zap.String("rule", rule.Name),
				zap.String("instance_id", instance.InstanceID),
				zap.Error(err))
			continue
		}
		if alert != nil {
			alerts = append(alerts, alert)
		}
	}

	return alerts
}

// AnalyzeInstances builds a report over the given instance set
func (d *Detector) AnalyzeInstances(instances []types.GPUInstance) *Report {
	var allAlerts []*Alert
	for i := range instances {
		allAlerts = append(allAlerts, d.AnalyzeInstance(&instances[i])...)
	}

	// Most urgent first, biggest waste first within a severity
	sort.SliceStable(allAlerts, func(i, j int) bool {
		if allAlerts[i].Severity.Rank() != allAlerts[j].Severity.Rank() {
			return allAlerts[i].Severity.Rank() < allAlerts[j].Severity.Rank()
		}
		return allAlerts[i].EstimatedWastePerDay > allAlerts[j].EstimatedWastePerDay
	})

	return &Report{
		GeneratedAt:            time.Now(),
		TotalInstancesAnalyzed: len(instances),
		Alerts:                 allAlerts,
	}
}

// Analyze fetches instances from the aggregator and builds a report
func (d *Detector) Analyze(ctx context.Context) *Report {
	return d.AnalyzeInstances(d.aggregator.AllInstances(ctx))
}

// QuickWins returns easy-to-fix alerts above a monthly savings floor,
// sorted by savings descending
func (d *Detector) QuickWins(ctx context.Context, minSavings float64) []*Alert {
	report := d.Analyze(ctx)

	var wins []*Alert
	for _, a := range report.Alerts {
		if a.MonthlyWaste() < minSavings {
			continue
		}
		if a.WasteType == WasteIdleGPU || a.WasteType == WasteSpotOpportunity {
			wins = append(wins, a)
		}
	}

	sort.Slice(wins, func(i, j int) bool {
		return wins[i].MonthlyWaste() > wins[j].MonthlyWaste()
	})
	return wins
}

// EstimateTotalSavings summarizes potential savings across the fleet
func (d *Detector) EstimateTotalSavings(ctx context.Context) output.Document {
	report := d.Analyze(ctx)

	byType := make(output.Document)
	for wasteType, alerts := range report.ByType() {
		monthly := 0.0
		for _, a := range alerts {
			monthly += a.MonthlyWaste()
		}
		byType[string(wasteType)] = output.Currency(monthly)
	}

	actionable := 0.0
	for _, a := range report.Alerts {
		if a.Severity == SeverityHigh || a.Severity == SeverityCritical {
			actionable += a.MonthlyWaste()
		}
	}

	return output.Document{
		"daily_waste":    output.Currency(report.TotalDailyWaste()),
		"monthly_waste":  output.Currency(report.TotalMonthlyWaste()),
		"annual_waste":   output.Currency(report.TotalMonthlyWaste() * 12),
		"by_type":        byType,
		"actionable_now": output.Currency(actionable),
	}
}
