// Package policy contains the Ranger-style ABAC policy model and the pure
// evaluation logic (C6) that walks a Snapshot against a request.
package policy

// ResourceSpec is the matching rule for one resource level (bucket or
// object) within a policy. Values may carry a "bucket/object" form when
// the source policy scopes an object value to a specific bucket — see
// matchValues in matcher.go.
type ResourceSpec struct {
	Values      []string
	IsExcludes  bool
	IsRecursive bool
}

// Condition is a supplemental, Ranger-inspired policy item condition —
// e.g. {"type": "ip-range", "values": ["cidr_contains(client_ip, \"10.0.0.0/8\")"]}.
// Each value is a boolean expression handed to the ConditionEvaluator.
// Conditions are ANDed; an empty list always passes. See SPEC_FULL.md §3.1.
type Condition struct {
	Type   string
	Values []string
}

// Access grants or denies one coarse access type within a PolicyItem.
type Access struct {
	Type      string
	IsAllowed bool
}

// PolicyItem grants a set of Accesses to a set of users/groups, optionally
// gated by Conditions, optionally carrying delegated-admin. There is no
// explicit-deny item in this model; the only way a matching policy denies
// access is by not granting it.
type PolicyItem struct {
	Users         []string
	Groups        []string
	Accesses      []Access
	DelegateAdmin bool
	Conditions    []Condition
}

// Policy is one Ranger policy: a bucket spec, an optional object spec, and
// an ordered list of PolicyItems walked first-match-wins per item.
type Policy struct {
	ID             int64
	Name           string
	Version        int64
	Service        string
	IsEnabled      bool
	IsAuditEnabled bool
	Bucket         ResourceSpec
	Object         *ResourceSpec // nil means "applies to every object in Bucket"
	PolicyItems    []PolicyItem
}

// Snapshot is the immutable, atomically-swapped view of a service's policy
// set plus its resolved service-definition id, installed wholesale by the
// refresher (C3) and read lock-free by the evaluator (C6).
type Snapshot struct {
	Service       string
	ServiceDefID  int64
	Policies      []Policy
	FetchedAtUnix int64
}
