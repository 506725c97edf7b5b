package cel

import (
	"net"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
)

// newConditionEnvironment builds the CEL environment policy item conditions
// (SPEC_FULL.md §3.1) are evaluated in: the request's resource tuple plus
// a cidr_contains helper for the common "restrict by client IP" case.
func newConditionEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("service", cel.StringType),
		cel.Variable("user", cel.StringType),
		cel.Variable("groups", cel.ListType(cel.StringType)),
		cel.Variable("roles", cel.ListType(cel.StringType)),
		cel.Variable("bucket", cel.StringType),
		cel.Variable("object", cel.StringType),
		cel.Variable("access_type", cel.StringType),
		cel.Variable("client_ip", cel.StringType),

		cel.Function("cidr_contains",
			cel.Overload("cidr_contains_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(ipVal, cidrVal ref.Val) ref.Val {
					ip := net.ParseIP(ipVal.Value().(string))
					if ip == nil {
						return types.Bool(false)
					}
					_, network, err := net.ParseCIDR(cidrVal.Value().(string))
					if err != nil {
						return types.Bool(false)
					}
					return types.Bool(network.Contains(ip))
				}),
			),
		),
	)
}

// activationFor builds the CEL activation map for a request tuple.
func activationFor(req decision.Request) map[string]any {
	return map[string]any{
		"service":     req.Service,
		"user":        req.User,
		"groups":      req.Groups,
		"roles":       req.Roles,
		"bucket":      req.Bucket,
		"object":      req.Object,
		"access_type": string(req.AccessType),
		"client_ip":   req.ClientIP,
	}
}
