// Package optimize turns waste findings and pricing knowledge into
// ranked, actionable savings recommendations.
package optimize

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gpu-spend/core/aggregate"
	"gpu-spend/core/output"
	"gpu-spend/core/pricing"
	"gpu-spend/core/types"
	"gpu-spend/core/waste"
)

// RecommendationType enumerates optimization actions
type RecommendationType string

const (
	RecTerminateIdle    RecommendationType = "terminate_idle"
	RecSwitchToSpot     RecommendationType = "switch_to_spot"
	RecDownsizeInstance RecommendationType = "downsize_instance"
	RecChangeRegion     RecommendationType = "change_region"
	RecChangeProvider   RecommendationType = "change_provider"
	RecScheduleShutdown RecommendationType = "schedule_shutdown"
	RecUseReserved      RecommendationType = "use_reserved"
	RecBatchWorkloads   RecommendationType = "batch_workloads"
)

// Priority grades how soon a recommendation should be acted on
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the sort rank of a priority
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Recommendation is one actionable savings opportunity
type Recommendation struct {
	Type           RecommendationType `json:"type"`
	Priority       Priority           `json:"priority"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	MonthlySavings float64            `json:"monthly_savings"`
	Effort         string             `json:"effort"`
	InstanceID     string             `json:"instance_id,omitempty"`
	Provider       string             `json:"provider,omitempty"`
	ActionSteps    []string           `json:"action_steps"`
}

// Document flattens the recommendation for transport
func (r *Recommendation) Document() output.Document {
	return output.Document{
		"type":            string(r.Type),
		"priority":        string(r.Priority),
		"title":           r.Title,
		"description":     r.Description,
		"monthly_savings": output.Currency(r.MonthlySavings),
		"effort":          r.Effort,
		"instance_id":     r.InstanceID,
		"provider":        r.Provider,
		"action_steps":    r.ActionSteps,
	}
}

// OptimizationReport is a complete ranked recommendation set
type OptimizationReport struct {
	GeneratedAt     time.Time         `json:"generated_at"`
	Recommendations []*Recommendation `json:"recommendations"`
}

// TotalMonthlySavings sums savings across all recommendations
func (r *OptimizationReport) TotalMonthlySavings() float64 {
	total := 0.0
	for _, rec := range r.Recommendations {
		total += rec.MonthlySavings
	}
	return total
}

// QuickWins returns low-effort recommendations saving over $50/month
func (r *OptimizationReport) QuickWins() []*Recommendation {
	var wins []*Recommendation
	for _, rec := range r.Recommendations {
		if rec.Effort == "low" && rec.MonthlySavings > 50 {
			wins = append(wins, rec)
		}
	}
	return wins
}

// ByPriority groups recommendations by priority
func (r *OptimizationReport) ByPriority() map[Priority][]*Recommendation {
	grouped := make(map[Priority][]*Recommendation)
	for _, rec := range r.Recommendations {
		grouped[rec.Priority] = append(grouped[rec.Priority], rec)
	}
	return grouped
}

// Document flattens the report for transport
func (r *OptimizationReport) Document() output.Document {
	wins := r.QuickWins()
	winsSavings := 0.0
	for _, rec := range wins {
		winsSavings += rec.MonthlySavings
	}

	byPriority := make(output.Document)
	for priority, recs := range r.ByPriority() {
		savings := 0.0
		for _, rec := range recs {
			savings += rec.MonthlySavings
		}
		byPriority[string(priority)] = output.Document{
			"count":   len(recs),
			"savings": output.Currency(savings),
		}
	}

	recDocs := make([]output.Document, 0, len(r.Recommendations))
	for _, rec := range r.Recommendations {
		recDocs = append(recDocs, rec.Document())
	}

	return output.Document{
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
		"summary": output.Document{
			"total_recommendations": len(r.Recommendations),
			"total_monthly_savings": output.Currency(r.TotalMonthlySavings()),
			"quick_wins_count":      len(wins),
			"quick_wins_savings":    output.Currency(winsSavings),
		},
		"by_priority":     byPriority,
		"recommendations": recDocs,
	}
}

// Recommender generates optimization recommendations from the current
// fleet state and waste analysis
type Recommender struct {
	aggregator *aggregate.Aggregator
	detector   *waste.Detector
}

// NewRecommender creates a recommender over the aggregator's fleet
func NewRecommender(aggregator *aggregate.Aggregator, detector *waste.Detector) *Recommender {
	if detector == nil {
		detector = waste.NewDetector(aggregator)
	}
	return &Recommender{
		aggregator: aggregator,
		detector:   detector,
	}
}

// Generate builds the full recommendation report: waste-driven
// actions, spot conversions, provider migrations, and scheduling, then
// ranks by priority and savings and drops duplicate (instance, type)
// pairs keeping the highest ranked.
func (r *Recommender) Generate(ctx context.Context) *OptimizationReport {
	instances := r.aggregator.AllInstances(ctx)
	wasteReport := r.detector.AnalyzeInstances(instances)

	var recs []*Recommendation
	recs = append(recs, fromWasteReport(wasteReport)...)
	recs = append(recs, spotOpportunities(instances)...)
	recs = append(recs, providerAlternatives(instances)...)
	recs = append(recs, schedulingOpportunities(instances)...)

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Priority.Rank() != recs[j].Priority.Rank() {
			return recs[i].Priority.Rank() < recs[j].Priority.Rank()
		}
		return recs[i].MonthlySavings > recs[j].MonthlySavings
	})

	type dedupKey struct {
		instanceID string
		recType    RecommendationType
	}
	seen := make(map[dedupKey]struct{})
	unique := recs[:0]
	for _, rec := range recs {
		key := dedupKey{rec.InstanceID, rec.Type}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rec)
	}

	return &OptimizationReport{
		GeneratedAt:     time.Now(),
		Recommendations: unique,
	}
}

// QuickWins returns low-effort recommendations above a savings floor
func (r *Recommender) QuickWins(ctx context.Context, minSavings float64) []*Recommendation {
	report := r.Generate(ctx)

	var wins []*Recommendation
	for _, rec := range report.Recommendations {
		if rec.Effort == "low" && rec.MonthlySavings >= minSavings {
			wins = append(wins, rec)
		}
	}
	return wins
}

// SavingsSummary condenses the report into totals by type
func (r *Recommender) SavingsSummary(ctx context.Context) output.Document {
	report := r.Generate(ctx)

	byType := make(output.Document)
	for _, rec := range report.Recommendations {
		current, _ := byType[string(rec.Type)].(float64)
		byType[string(rec.Type)] = current + rec.MonthlySavings
	}
	for recType, savings := range byType {
		byType[recType] = output.Currency(savings.(float64))
	}

	wins := report.QuickWins()
	winsSavings := 0.0
	for _, rec := range wins {
		winsSavings += rec.MonthlySavings
	}

	return output.Document{
		"total_monthly_savings": output.Currency(report.TotalMonthlySavings()),
		"total_annual_savings":  output.Currency(report.TotalMonthlySavings() * 12),
		"quick_wins": output.Document{
			"count":           len(wins),
			"monthly_savings": output.Currency(winsSavings),
		},
		"by_type":              byType,
		"recommendation_count": len(report.Recommendations),
	}
}

// fromWasteReport converts waste alerts into recommendations
func fromWasteReport(report *waste.Report) []*Recommendation {
	var recs []*Recommendation

	for _, alert := range report.Alerts {
		switch alert.WasteType {
		case waste.WasteIdleGPU:
			priority := PriorityHigh
			if alert.MonthlyWaste() > 500 {
				priority = PriorityCritical
			}
			recs = append(recs, &Recommendation{
				Type:           RecTerminateIdle,
				Priority:       priority,
				Title:          fmt.Sprintf("Terminate idle %s", alert.Instance.GPUType),
				Description:    alert.Message,
				MonthlySavings: alert.MonthlyWaste(),
				Effort:         "low",
				InstanceID:     alert.Instance.InstanceID,
				Provider:       alert.Instance.Provider,
				ActionSteps: []string{
					fmt.Sprintf("Verify instance %s is not needed", alert.Instance.InstanceID),
					"Export any data if required",
					fmt.Sprintf("Terminate instance via %s console", alert.Instance.Provider),
				},
			})

		case waste.WasteSpotOpportunity:
			recs = append(recs, &Recommendation{
				Type:           RecSwitchToSpot,
				Priority:       PriorityMedium,
				Title:          "Switch to spot pricing",
				Description:    alert.Message,
				MonthlySavings: alert.MonthlyWaste(),
				Effort:         "medium",
				InstanceID:     alert.Instance.InstanceID,
				Provider:       alert.Instance.Provider,
				ActionSteps: []string{
					"Review workload fault tolerance",
					"Set up checkpointing for long-running jobs",
					fmt.Sprintf("Migrate to spot instance on %s", alert.Instance.Provider),
				},
			})

		case waste.WasteOversizedInstance:
			recs = append(recs, &Recommendation{
				Type:           RecDownsizeInstance,
				Priority:       PriorityMedium,
				Title:          fmt.Sprintf("Downsize %s", alert.Instance.GPUType),
				Description:    alert.Message,
				MonthlySavings: alert.MonthlyWaste(),
				Effort:         "medium",
				InstanceID:     alert.Instance.InstanceID,
				Provider:       alert.Instance.Provider,
				ActionSteps: []string{
					"Profile actual memory usage",
					"Test workload on smaller instance",
					"Migrate to downsized instance",
				},
			})
		}
	}

	return recs
}

// spotOpportunities flags running on-demand instances whose projected
// spot savings clear $50/month
func spotOpportunities(instances []types.GPUInstance) []*Recommendation {
	var recs []*Recommendation

	for i := range instances {
		instance := &instances[i]
		if !instance.IsRunning() || instance.PricingType != types.PricingOnDemand {
			continue
		}

		discount := pricing.SpotDiscount(instance.Provider)
		monthlySavings := instance.HourlyCost * 24 * 30 * discount
		if monthlySavings <= 50 {
			continue
		}

		recs = append(recs, &Recommendation{
			Type:     RecSwitchToSpot,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Switch %s to spot", instance.InstanceType),
			Description: fmt.Sprintf(
				"Running on-demand at $%.2f/hr. Spot pricing could save ~%.0f%%",
				instance.HourlyCost, discount*100),
			MonthlySavings: monthlySavings,
			Effort:         "medium",
			InstanceID:     instance.InstanceID,
			Provider:       instance.Provider,
			ActionSteps: []string{
				"Verify workload can handle interruptions",
				"Implement checkpointing if needed",
				"Request spot instance with same configuration",
				"Migrate workload and terminate on-demand instance",
			},
		})
	}

	return recs
}

// providerAlternatives suggests the best cheaper marketplace offering
// for each running instance, when switching saves over $100/month
func providerAlternatives(instances []types.GPUInstance) []*Recommendation {
	var recs []*Recommendation

	for i := range instances {
		instance := &instances[i]
		if !instance.IsRunning() {
			continue
		}

		for _, alt := range pricing.CheaperAlternatives[instance.GPUType] {
			if alt.Provider == instance.Provider {
				continue
			}

			currentMonthly := instance.HourlyCost * 24 * 30
			alternativeMonthly := alt.Hourly * float64(instance.GPUCount) * 24 * 30
			savings := currentMonthly - alternativeMonthly
			if savings <= 100 {
				continue
			}

			recs = append(recs, &Recommendation{
				Type:     RecChangeProvider,
				Priority: PriorityLow,
				Title:    fmt.Sprintf("Move to %s", alt.Provider),
				Description: fmt.Sprintf(
					"Current: $%.2f/hr on %s. Alternative: $%.2f/hr on %s",
					instance.HourlyCost, instance.Provider, alt.Hourly, alt.Provider),
				MonthlySavings: savings,
				Effort:         "high",
				InstanceID:     instance.InstanceID,
				Provider:       instance.Provider,
				ActionSteps: []string{
					fmt.Sprintf("Create account on %s if needed", alt.Provider),
					"Verify feature parity (networking, storage, etc.)",
					"Test workload on new provider",
					"Migrate data and configurations",
					"Switch over and terminate old instance",
				},
			})
			// Only the best alternative per instance
			break
		}
	}

	return recs
}

// schedulingOpportunities flags development instances running around
// the clock that an off-hours shutdown schedule could halve
func schedulingOpportunities(instances []types.GPUInstance) []*Recommendation {
	var recs []*Recommendation

	for i := range instances {
		instance := &instances[i]
		if !instance.IsRunning() || !isDevInstance(instance) {
			continue
		}

		// Assume 12 hours off per day
		monthlySavings := instance.HourlyCost * 12 * 30
		if monthlySavings <= 50 {
			continue
		}

		recs = append(recs, &Recommendation{
			Type:     RecScheduleShutdown,
			Priority: PriorityMedium,
			Title:    fmt.Sprintf("Schedule %s shutdown", instance.InstanceType),
			Description: fmt.Sprintf(
				"Development instance running 24/7. Scheduling off-hours shutdown could save $%.0f/month",
				monthlySavings),
			MonthlySavings: monthlySavings,
			Effort:         "low",
			InstanceID:     instance.InstanceID,
			Provider:       instance.Provider,
			ActionSteps: []string{
				"Identify usage hours (e.g., 8am-8pm)",
				fmt.Sprintf("Set up scheduled shutdown via %s or Lambda/Cloud Functions", instance.Provider),
				"Test auto-start and shutdown",
				"Monitor for a week to verify savings",
			},
		})
	}

	return recs
}

var devMarkers = []string{"dev", "development", "test", "staging"}

// isDevInstance checks the instance's tags for development markers
func isDevInstance(instance *types.GPUInstance) bool {
	for key, value := range instance.Tags {
		for _, marker := range devMarkers {
			if strings.Contains(strings.ToLower(key), marker) ||
				strings.Contains(strings.ToLower(value), marker) {
				return true
			}
		}
	}
	return false
}
