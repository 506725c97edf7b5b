package policy

import (
	"fmt"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
)

// ConditionEvaluator evaluates a PolicyItem's supplemental conditions
// (SPEC_FULL.md §3.1) against a request. Implementations live in the CEL
// adapter; the domain only depends on this narrow interface so the
// evaluation algorithm stays free of any expression-language dependency.
type ConditionEvaluator interface {
	Evaluate(conditions []Condition, req decision.Request) (bool, error)
}

// noopConditions treats every condition list as satisfied. Used when no
// ConditionEvaluator is wired, preserving exact spec.md behavior for
// deployments that never set PolicyItem.Conditions.
type noopConditions struct{}

func (noopConditions) Evaluate(conditions []Condition, _ decision.Request) (bool, error) {
	return true, nil
}

// NoopConditionEvaluator is the default ConditionEvaluator.
var NoopConditionEvaluator ConditionEvaluator = noopConditions{}

// Evaluate walks snap's policies against req and returns a Decision. It
// never mutates snap. cond is consulted only for items that carry
// Conditions; pass NoopConditionEvaluator to disable the feature entirely.
//
// Algorithm (grounded in the source PolicyChecker.check_access):
//  1. Skip disabled policies.
//  2. A policy applies only if its resource specs cover req (see
//     resourceApplies).
//  3. Within an applying policy, walk items in declared order: a matching
//     item (by user or group) that carries delegated-admin or grants the
//     requested access type decides the whole request immediately. A
//     resource-matching policy with no matching item does not short-circuit
//     the walk, it just moves on to the next policy.
//  4. No match anywhere: deny, closed-by-default.
//
// There is no explicit-deny item in this model: a policy only ever grants.
func Evaluate(snap Snapshot, req decision.Request, cond ConditionEvaluator) decision.Decision {
	if cond == nil {
		cond = NoopConditionEvaluator
	}

	if req.AccessType == decision.AccessAdmin || hasRole(req.Roles, decision.RoleSysAdmin) {
		return decision.Decision{Allowed: true, Reason: "admin access bypasses policy evaluation", Audited: true}
	}

	var lastMatchedPolicy *Policy

	for i := range snap.Policies {
		p := &snap.Policies[i]
		if !p.IsEnabled {
			continue
		}
		if !resourceApplies(req, p) {
			continue
		}
		lastMatchedPolicy = p

		if item, ok := matchItems(p.PolicyItems, req, cond); ok {
			reason := fmt.Sprintf("allowed by policy %d (%s)", p.ID, p.Name)
			if item.DelegateAdmin {
				reason = fmt.Sprintf("delegated admin on policy %d (%s)", p.ID, p.Name)
			}
			return decision.Decision{
				Allowed:       true,
				PolicyID:      p.ID,
				PolicyVersion: p.Version,
				Reason:        reason,
				Audited:       p.IsAuditEnabled,
			}
		}
	}

	// A denial is never silenced by a policy's isAuditEnabled flag — spec.md
	// §4.7 fixes the denied tuple as (false, false, ...); Audited here only
	// ever means "this allow opted out of auditing."
	d := decision.Deny("no policy item granted the requested access")
	d.Audited = false
	if lastMatchedPolicy != nil {
		d.PolicyID = lastMatchedPolicy.ID
		d.PolicyVersion = lastMatchedPolicy.Version
	}
	return d
}

// matchItems returns the first item in items whose subject and access
// match req and whose conditions hold.
func matchItems(items []PolicyItem, req decision.Request, cond ConditionEvaluator) (PolicyItem, bool) {
	for _, item := range items {
		if !subjectMatches(item, req) {
			continue
		}
		ok, err := cond.Evaluate(item.Conditions, req)
		if err != nil || !ok {
			continue
		}
		if item.DelegateAdmin {
			return item, true
		}
		if accessGranted(item.Accesses, req.AccessType) {
			return item, true
		}
	}
	return PolicyItem{}, false
}

func accessGranted(accesses []Access, accessType decision.AccessType) bool {
	for _, a := range accesses {
		if a.Type == string(accessType) && a.IsAllowed {
			return true
		}
	}
	return false
}

func subjectMatches(item PolicyItem, req decision.Request) bool {
	if contains(item.Users, req.User) {
		return true
	}
	for _, g := range req.Groups {
		if contains(item.Groups, g) {
			return true
		}
	}
	return false
}

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func hasRole(roles []string, target string) bool {
	return contains(roles, target)
}
