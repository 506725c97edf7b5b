package cel

import (
	"testing"

	"github.com/ranger-acl/rangeracl/internal/domain/decision"
)

func TestActivationFor_ExposesRequestFields(t *testing.T) {
	req := decision.Request{
		Service: "s3", User: "alice", Groups: []string{"eng"}, Roles: []string{"ROLE_USER"},
		Bucket: "analytics", Object: "file.txt", AccessType: decision.AccessRead, ClientIP: "10.0.0.1",
	}
	act := activationFor(req)

	want := map[string]any{
		"service": "s3", "user": "alice", "bucket": "analytics", "object": "file.txt",
		"access_type": "read", "client_ip": "10.0.0.1",
	}
	for k, v := range want {
		if act[k] != v {
			t.Errorf("activation[%q] = %v, want %v", k, act[k], v)
		}
	}
}

func TestNewConditionEnvironment_Builds(t *testing.T) {
	if _, err := newConditionEnvironment(); err != nil {
		t.Fatalf("newConditionEnvironment() error = %v", err)
	}
}
