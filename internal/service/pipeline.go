package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ranger-acl/rangeracl/internal/adapter/outbound/memory"
	"github.com/ranger-acl/rangeracl/internal/domain/audit"
	"github.com/ranger-acl/rangeracl/internal/domain/decision"
	"github.com/ranger-acl/rangeracl/internal/domain/policy"
	"github.com/ranger-acl/rangeracl/internal/domain/subject"
)

// ErrBadRequest is returned when a request carries no usable username.
var ErrBadRequest = errors.New("request has no resolvable username")

// ErrEmptySnapshot names the condition where no policy snapshot has ever
// been installed for the requested service — the refresher hasn't completed
// its first load yet, or the service name doesn't exist on the policy
// source. It is closed-by-default, not an error: Evaluate never returns it,
// it only supplies the Warn log message and Deny reason for that path.
var ErrEmptySnapshot = errors.New("no policy snapshot available for service")

// Input is the inbound request to the decision pipeline (C9), shaped by
// the HTTP adapter from the wire request body.
type Input struct {
	Service    string
	Usernames  []string
	Bucket     string
	Object     string
	ActionVerb string
	ClientIP   string
	SessionID  string
}

// Pipeline (C9) orchestrates every other component into the end-to-end
// decision: resolve subject, check the decision cache, evaluate against
// the current snapshot on a miss, cache the result, and emit an audit
// record — without the audit emission ever delaying the response.
type Pipeline struct {
	store     policy.SnapshotStore
	resolver  subject.Resolver
	cache     *memory.DecisionCache
	condEval  policy.ConditionEvaluator
	emitter   *AuditEmitter
	logger    *slog.Logger
	agentHost string
	now       func() time.Time
}

// NewPipeline wires the C1/C4/C5/C6/C8 components into a request pipeline.
// condEval may be policy.NoopConditionEvaluator when the conditions
// feature is unused. agentHost is stamped into every audit record (the
// configured API_HOST, spec.md §6).
func NewPipeline(store policy.SnapshotStore, resolver subject.Resolver, cache *memory.DecisionCache, condEval policy.ConditionEvaluator, emitter *AuditEmitter, logger *slog.Logger, agentHost string) *Pipeline {
	return &Pipeline{
		store:     store,
		resolver:  resolver,
		cache:     cache,
		condEval:  condEval,
		emitter:   emitter,
		logger:    logger,
		agentHost: agentHost,
		now:       time.Now,
	}
}

// firstNonEmpty returns the first non-empty string in candidates.
func firstNonEmpty(candidates []string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// Evaluate runs the full pipeline for in and returns the decision. The only
// error Evaluate itself returns is ErrBadRequest, for a request with no
// resolvable username. Every other failure mode — a subject-resolution
// transport error, an empty snapshot — is closed-by-default: it comes back
// as a denied Decision with a nil error, already audited, so the caller
// always has a structured decision to act on.
func (p *Pipeline) Evaluate(ctx context.Context, in Input) (decision.Decision, error) {
	username := firstNonEmpty(in.Usernames)
	if username == "" {
		return decision.Decision{}, ErrBadRequest
	}

	accessType := decision.MapAction(in.ActionVerb)

	if accessType == decision.AccessAdmin {
		req := decision.Request{
			Service: in.Service, User: username, Bucket: in.Bucket, Object: in.Object,
			AccessType: accessType, ClientIP: in.ClientIP, SessionID: in.SessionID,
		}
		d := decision.Decision{Allowed: true, Reason: "admin access type bypasses policy evaluation", Audited: true}
		p.audit(ctx, req, d, 0)
		return d, nil
	}

	attrs, resolveErr := p.resolver.Resolve(ctx, username)
	if resolveErr != nil {
		d := decision.Deny("failed to resolve subject attributes: " + resolveErr.Error())
		p.audit(ctx, decision.Request{
			Service: in.Service, User: username, Bucket: in.Bucket, Object: in.Object,
			AccessType: accessType, ClientIP: in.ClientIP, SessionID: in.SessionID,
		}, d, 1)
		return d, nil
	}

	req := decision.Request{
		Service:    in.Service,
		User:       username,
		Groups:     attrs.Groups,
		Roles:      attrs.Roles,
		Bucket:     in.Bucket,
		Object:     in.Object,
		AccessType: accessType,
		ClientIP:   in.ClientIP,
		SessionID:  in.SessionID,
	}

	if hasRoleSysAdmin(req.Roles) {
		d := decision.Decision{Allowed: true, Reason: "subject holds ROLE_SYS_ADMIN", Audited: true}
		p.audit(ctx, req, d, 0)
		return d, nil
	}

	now := p.now()
	key := memory.DecisionKey(req)
	if cached, ok := p.cache.Get(key, now); ok {
		p.audit(ctx, req, cached, 1)
		return cached, nil
	}

	snap, ok := p.store.Get(in.Service)
	if !ok {
		p.logger.Warn(ErrEmptySnapshot.Error(), "service", in.Service, "user", username)
		d := decision.Deny(ErrEmptySnapshot.Error())
		d.Audited = false
		p.audit(ctx, req, d, 0)
		return d, nil
	}

	d := policy.Evaluate(snap, req, p.condEval)
	p.cache.Put(key, d, now)
	p.audit(ctx, req, d, snap.ServiceDefID)
	return d, nil
}

func hasRoleSysAdmin(roles []string) bool {
	for _, r := range roles {
		if r == decision.RoleSysAdmin {
			return true
		}
	}
	return false
}

// audit emits a record unless d is an allow that opted out via
// isAuditEnabled=false. A deny is always audited, regardless of Audited —
// spec.md §4.9 step 7 has no opt-out for denial.
func (p *Pipeline) audit(ctx context.Context, req decision.Request, d decision.Decision, repoType int64) {
	if d.Allowed && !d.Audited {
		return
	}
	record := audit.Build(req, d, repoType, p.agentHost, p.now())
	p.emitter.Emit(record)
}
