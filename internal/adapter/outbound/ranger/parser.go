package ranger

import (
	"encoding/json"
	"fmt"

	"github.com/ranger-acl/rangeracl/internal/domain/policy"
)

// rawResourceSpec mirrors the JSON shape of one resource level inside a
// Ranger policy's "resources" object. IsRecursive is a pointer so a
// missing field can fall back to its level-specific default (false for
// buckets, true for objects) instead of Go's zero value.
type rawResourceSpec struct {
	Values      []string `json:"values"`
	IsExcludes  bool     `json:"isExcludes"`
	IsRecursive *bool    `json:"isRecursive"`
}

func (r rawResourceSpec) recursive(def bool) bool {
	if r.IsRecursive == nil {
		return def
	}
	return *r.IsRecursive
}

type rawAccess struct {
	Type      string `json:"type"`
	IsAllowed bool   `json:"isAllowed"`
}

type rawCondition struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

type rawPolicyItem struct {
	Users         []string       `json:"users"`
	Groups        []string       `json:"groups"`
	Accesses      []rawAccess    `json:"accesses"`
	DelegateAdmin bool           `json:"delegateAdmin"`
	Conditions    []rawCondition `json:"conditions"`
}

type rawPolicy struct {
	ID             int64                      `json:"id"`
	Name           string                     `json:"name"`
	Version        int64                      `json:"version"`
	Service        string                     `json:"service"`
	IsEnabled      bool                       `json:"isEnabled"`
	IsAuditEnabled bool                       `json:"isAuditEnabled"`
	Resources      map[string]rawResourceSpec `json:"resources"`
	PolicyItems    []rawPolicyItem            `json:"policyItems"`
}

// parsePoliciesResponse accepts every shape the reference policy source has
// been observed to return for a service's policy list: a bare array, or an
// envelope keyed "policies", "vXPolicies", or "data". A single policy
// object (no envelope, no array) is also accepted and treated as a
// one-element list — some deployments return that for a single-policy
// service. Anything else is a TransportError.
func parsePoliciesResponse(body []byte) ([]policy.Policy, error) {
	var asArray []rawPolicy
	if err := json.Unmarshal(body, &asArray); err == nil {
		return normalizeAll(asArray), nil
	}

	var envelope struct {
		Policies  []rawPolicy `json:"policies"`
		VXPolicies []rawPolicy `json:"vXPolicies"`
		Data      []rawPolicy `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Policies != nil:
			return normalizeAll(envelope.Policies), nil
		case envelope.VXPolicies != nil:
			return normalizeAll(envelope.VXPolicies), nil
		case envelope.Data != nil:
			return normalizeAll(envelope.Data), nil
		}
	}

	var single rawPolicy
	if err := json.Unmarshal(body, &single); err == nil && single.PolicyItems != nil {
		return normalizeAll([]rawPolicy{single}), nil
	}

	return nil, fmt.Errorf("unrecognized policy response shape")
}

func normalizeAll(raws []rawPolicy) []policy.Policy {
	out := make([]policy.Policy, 0, len(raws))
	for _, r := range raws {
		out = append(out, normalizePolicy(r))
	}
	return out
}

func normalizePolicy(r rawPolicy) policy.Policy {
	p := policy.Policy{
		ID:             r.ID,
		Name:           r.Name,
		Version:        r.Version,
		Service:        r.Service,
		IsEnabled:      r.IsEnabled,
		IsAuditEnabled: r.IsAuditEnabled,
		PolicyItems:    normalizeItems(r.PolicyItems),
	}
	if bucket, ok := r.Resources["bucket"]; ok {
		p.Bucket = policy.ResourceSpec{
			Values:      bucket.Values,
			IsExcludes:  bucket.IsExcludes,
			IsRecursive: bucket.recursive(false),
		}
	}
	if object, ok := r.Resources["object"]; ok {
		p.Object = &policy.ResourceSpec{
			Values:      object.Values,
			IsExcludes:  object.IsExcludes,
			IsRecursive: object.recursive(true),
		}
	}
	return p
}

func normalizeItems(raws []rawPolicyItem) []policy.PolicyItem {
	items := make([]policy.PolicyItem, 0, len(raws))
	for _, r := range raws {
		item := policy.PolicyItem{
			Users:         r.Users,
			Groups:        r.Groups,
			DelegateAdmin: r.DelegateAdmin,
		}
		for _, a := range r.Accesses {
			item.Accesses = append(item.Accesses, policy.Access{Type: a.Type, IsAllowed: a.IsAllowed})
		}
		for _, c := range r.Conditions {
			item.Conditions = append(item.Conditions, policy.Condition{Type: c.Type, Values: c.Values})
		}
		items = append(items, item)
	}
	return items
}

// rawUser is the shape of the policy source's per-user lookup response.
type rawUser struct {
	GroupNameList []string `json:"groupNameList"`
	UserRoleList  []string `json:"userRoleList"`
}

func parseUserResponse(body []byte) (rawUser, error) {
	var u rawUser
	if err := json.Unmarshal(body, &u); err != nil {
		return rawUser{}, fmt.Errorf("unrecognized user response shape: %w", err)
	}
	return u, nil
}
