// Package decision contains the request/decision types shared by every
// component of the authorization pipeline: the resource tuple a caller
// asks about, the coarse access type it maps to, and the outcome the
// evaluator produces.
package decision

import "fmt"

// AccessType is the coarse-grained permission a request is checked against.
// Ranger policies grant/deny accesses by this type, not by raw S3 verb.
type AccessType string

const (
	AccessRead   AccessType = "read"
	AccessWrite  AccessType = "write"
	AccessDelete AccessType = "delete"
	AccessList   AccessType = "list"
	AccessAdmin  AccessType = "admin"
)

// RoleSysAdmin is the Ranger role that short-circuits every policy check.
const RoleSysAdmin = "ROLE_SYS_ADMIN"

// Request is the (subject, action, resource) tuple the pipeline evaluates.
// Bucket is always populated; Object is empty for a bucket-level request.
type Request struct {
	Service    string
	User       string
	Groups     []string
	Roles      []string
	Bucket     string
	Object     string
	AccessType AccessType
	ClientIP   string
	// SessionID is the optional X-Session-Id header value forwarded by the
	// ingress (spec.md §6); empty when the caller didn't set one.
	SessionID string
}

// String renders a compact, stable identity for logging. It deliberately
// omits Groups/Roles since those can be large and are resolved separately.
func (r Request) String() string {
	return fmt.Sprintf("%s/%s/%s user=%s access=%s", r.Service, r.Bucket, r.Object, r.User, r.AccessType)
}

// Decision is the outcome of evaluating a Request against a policy snapshot.
type Decision struct {
	Allowed bool
	// PolicyID is the id of the policy that produced the decision, or, on a
	// denial, the last enabled policy whose resources covered the request
	// (0 when none did). It is informational only —
	// callers must not infer a match from a non-zero value on a denial.
	PolicyID int64
	// PolicyVersion is copied from the matching policy for the audit trail.
	PolicyVersion int64
	Reason        string
	// Audited is, on an allow, the granting policy's isAuditEnabled flag.
	// policy.Evaluate reports false on every denial; the pipeline audits
	// denials whatever this field says.
	Audited bool
}

// Deny builds a closed-by-default denial with the given reason and
// Audited=true.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason, Audited: true}
}
