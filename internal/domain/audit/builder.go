package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
)

// Build assembles a Record from a decision outcome. now is injected so
// callers (and tests) control the timestamp rather than relying on the
// wall clock inside this package. agentHost is the configured API_HOST
// value (spec.md §6), not the machine hostname.
func Build(req decision.Request, dec decision.Decision, repoType int64, agentHost string, now time.Time) Record {
	result := ResultDenied
	if dec.Allowed {
		result = ResultAllowed
	}

	resource := "/" + req.Bucket
	if req.Object != "" {
		resource = "/" + req.Bucket + "/" + req.Object
	}

	var policyRef any = dec.PolicyID
	if dec.PolicyID == 0 {
		policyRef = "no-policy"
	}

	policyVersion := dec.PolicyVersion
	if policyVersion == 0 {
		policyVersion = 1
	}

	if repoType == 0 {
		repoType = 1
	}

	return Record{
		ID:            uuid.NewString(),
		EvtTime:       now.UTC().Format("2006-01-02T15:04:05.000") + "Z",
		Policy:        policyRef,
		PolicyVersion: policyVersion,
		Access:        string(req.AccessType),
		Enforcer:      "ranger-acl",
		Repo:          req.Bucket,
		RepoType:      repoType,
		Sess:          req.SessionID,
		ReqUser:       req.User,
		Resource:      resource,
		CliIP:         req.ClientIP,
		Result:        result,
		AgentHost:     agentHost,
		LogType:       "RangerAudit",
		ResType:       "path",
		Reason:        dec.Reason,
		Action:        string(req.AccessType),
		SeqNum:        1,
		EventCount:    1,
		EventDurMS:    0,
		Tags:          []string{},
		Cluster:       "",
		Zone:          "",
	}
}
