package policy

import (
	"regexp"
	"strings"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
)

// matchValues implements the resource-value matching rule shared by bucket
// and object matching: an exact (or, when recursive, prefix) match against
// one of spec.Values, falling back to a wildcard ("*") glob, with the
// result inverted when spec.IsExcludes is set. bucketName, when non-empty,
// lets a "bucket/object" style policy value scope itself to that bucket
// before comparing the object half against resourceValue.
func matchValues(resourceValue string, spec ResourceSpec, bucketName string) bool {
	if len(spec.Values) == 0 {
		return false
	}

	for _, policyValue := range spec.Values {
		currentPolicyValue := policyValue

		if bucketName != "" && strings.Contains(policyValue, "/") {
			parts := strings.SplitN(policyValue, "/", 2)
			if len(parts) == 2 {
				policyBucket, policyObject := parts[0], parts[1]
				if policyBucket != bucketName {
					continue
				}
				currentPolicyValue = policyObject
			}
		}

		matched := false
		if spec.IsRecursive {
			matched = resourceValue == currentPolicyValue || strings.HasPrefix(resourceValue, currentPolicyValue)
		} else {
			matched = resourceValue == currentPolicyValue
		}

		if !matched && strings.Contains(currentPolicyValue, "*") {
			if ok, _ := regexp.MatchString("^"+globToRegex(currentPolicyValue)+"$", resourceValue); ok {
				matched = true
			}
		}

		if matched {
			return !spec.IsExcludes
		}
	}
	return spec.IsExcludes
}

// globToRegex escapes every regex metacharacter except the policy's own
// "*" wildcard, then expands that wildcard to ".*".
func globToRegex(pattern string) string {
	escaped := regexp.QuoteMeta(pattern)
	return strings.ReplaceAll(escaped, `\*`, ".*")
}

// resourceApplies reports whether p's bucket/object resource specs cover
// req, following the source matcher's presence rules rather than treating
// an empty bucket spec as an automatic mismatch:
//
//   - A bucket spec present: req.Bucket must match it.
//   - Neither a bucket nor an object spec present: the policy never
//     applies to anything.
//   - No bucket spec but an object spec present: the bucket is encoded
//     inside the object spec's "bucket/object" values instead (see
//     matchValues), so bucket matching is deferred to the object check.
//   - req.Object present and an object spec present: req.Object must
//     match it.
//   - req.Object present, no object spec: the policy is bucket-level and
//     covers any object.
//   - req.Object absent (bucket-level request) and an object spec
//     present: an object-scoped policy can never authorize a bucket-level
//     operation.
//   - req.Object absent, no object spec: the policy applies.
func resourceApplies(req decision.Request, p *Policy) bool {
	bucketPresent := len(p.Bucket.Values) > 0
	objectPresent := p.Object != nil && len(p.Object.Values) > 0

	if bucketPresent {
		if !matchValues(req.Bucket, p.Bucket, "") {
			return false
		}
	} else if !objectPresent {
		return false
	}

	if req.Object != "" {
		if objectPresent {
			return matchValues(req.Object, *p.Object, req.Bucket)
		}
		return true
	}
	return !objectPresent
}
