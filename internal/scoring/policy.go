// Package scoring turns feature sets into an EDRS score through a policy of
// named rules, and maps scores onto risk buckets and collection actions.
package scoring

import (
	"github.com/Veraticus/edrs/internal/model"
)

// Rule contributes points to the score of one feature set.
type Rule interface {
	Name() string
	Contribution(f model.Features) int
}

// countRule adds weight points per unit of a counted feature.
type countRule struct {
	count  func(model.Features) int
	name   string
	weight int
}

func (r countRule) Name() string { return r.name }

func (r countRule) Contribution(f model.Features) int {
	return r.weight * r.count(f)
}

// flagRule adds weight points when its predicate holds.
type flagRule struct {
	pred   func(model.Features) bool
	name   string
	weight int
}

func (r flagRule) Name() string { return r.name }

func (r flagRule) Contribution(f model.Features) int {
	if r.pred(f) {
		return r.weight
	}
	return 0
}

// Count builds a rule worth weight points per unit of count(f).
func Count(name string, weight int, count func(model.Features) int) Rule {
	return countRule{name: name, weight: weight, count: count}
}

// Flag builds a rule worth weight points when pred(f) is true.
func Flag(name string, weight int, pred func(model.Features) bool) Rule {
	return flagRule{name: name, weight: weight, pred: pred}
}

// Policy is an ordered, named list of scoring rules.
type Policy struct {
	Name  string
	Rules []Rule
}

// DefaultPolicyName identifies the production weighting.
const DefaultPolicyName = "edrs-v1"

// PaymentRatioFloor is the last-payment ratio below which an account is
// considered under-paying.
const PaymentRatioFloor = 0.7

// DefaultPolicy returns the production weighting:
//
//	2*count_telat_3m + 1[count_telat_6m>=3] + 1[max_tunggakan_6m>=2]
//	+ 1[ratio_bayar_last<0.7] + 1[bill_trend_up] + 1[dpd_proxy_now>=1]
//	+ 1[streak_telat2plus>=1]
func DefaultPolicy() Policy {
	return Policy{
		Name: DefaultPolicyName,
		Rules: []Rule{
			Count("late_recent_3m", 2, func(f model.Features) int { return f.CountTelat3m }),
			Flag("late_6m_at_least_3", 1, func(f model.Features) bool { return f.CountTelat6m >= 3 }),
			Flag("max_arrears_at_least_2", 1, func(f model.Features) bool { return f.MaxTunggakan6m >= 2 }),
			Flag("payment_ratio_below_0_7", 1, func(f model.Features) bool { return f.RatioBayarLast < PaymentRatioFloor }),
			Flag("bill_trend_up", 1, func(f model.Features) bool { return f.BillTrendUp }),
			Flag("dpd_now", 1, func(f model.Features) bool { return f.DPDProxyNow >= 1 }),
			Flag("streak_2plus", 1, func(f model.Features) bool { return f.StreakTelat2Plus >= 1 }),
		},
	}
}

// Score sums every rule's contribution and returns the per-rule breakdown
// in policy order. Rules contributing zero are included.
func (p Policy) Score(f model.Features) (int, []model.RuleContribution) {
	total := 0
	breakdown := make([]model.RuleContribution, 0, len(p.Rules))
	for _, rule := range p.Rules {
		points := rule.Contribution(f)
		total += points
		breakdown = append(breakdown, model.RuleContribution{Rule: rule.Name(), Points: points})
	}
	return total, breakdown
}

// Total returns only the summed score.
func (p Policy) Total(f model.Features) int {
	total, _ := p.Score(f)
	return total
}
