package ranger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "admin", "admin"), srv
}

func TestFetchPolicies_BareArray(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"name":"p1","isEnabled":true,"resources":{"bucket":{"values":["analytics"]}},"policyItems":[]}]`))
	})

	policies, err := c.FetchPolicies(context.Background(), "s3")
	if err != nil {
		t.Fatalf("FetchPolicies() error = %v", err)
	}
	if len(policies) != 1 || policies[0].ID != 1 {
		t.Errorf("policies = %+v, want one policy with id 1", policies)
	}
}

func TestFetchPolicies_PoliciesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"policies":[{"id":2,"name":"p2","isEnabled":true,"resources":{},"policyItems":[]}]}`))
	})

	policies, err := c.FetchPolicies(context.Background(), "s3")
	if err != nil {
		t.Fatalf("FetchPolicies() error = %v", err)
	}
	if len(policies) != 1 || policies[0].ID != 2 {
		t.Errorf("policies = %+v, want one policy with id 2", policies)
	}
}

func TestFetchPolicies_VXPoliciesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"vXPolicies":[{"id":3,"name":"p3","isEnabled":true,"resources":{},"policyItems":[]}]}`))
	})

	policies, err := c.FetchPolicies(context.Background(), "s3")
	if err != nil {
		t.Fatalf("FetchPolicies() error = %v", err)
	}
	if len(policies) != 1 || policies[0].ID != 3 {
		t.Errorf("policies = %+v, want one policy with id 3", policies)
	}
}

func TestFetchPolicies_UnexpectedStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.FetchPolicies(context.Background(), "s3")
	if err == nil {
		t.Fatal("FetchPolicies() expected error on 500, got nil")
	}
}

func TestFetchPolicies_UnrecognizedShape(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"just a string"`))
	})

	_, err := c.FetchPolicies(context.Background(), "s3")
	if err == nil {
		t.Fatal("FetchPolicies() expected error on unrecognized shape, got nil")
	}
}

func TestFetchServiceDefID_Found(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":9}`))
	})

	id, ok, err := c.FetchServiceDefID(context.Background(), "s3")
	if err != nil {
		t.Fatalf("FetchServiceDefID() error = %v", err)
	}
	if !ok || id != 9 {
		t.Errorf("id=%d ok=%v, want id=9 ok=true", id, ok)
	}
}

func TestFetchServiceDefID_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	id, ok, err := c.FetchServiceDefID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("FetchServiceDefID() error = %v", err)
	}
	if ok || id != 0 {
		t.Errorf("id=%d ok=%v, want id=0 ok=false", id, ok)
	}
}

func TestGetUserAttributes_Found(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"groupNameList":["analytics","eng"],"userRoleList":["ROLE_USER"]}`))
	})

	attrs, err := c.GetUserAttributes(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetUserAttributes() error = %v", err)
	}
	if len(attrs.Groups) != 2 || attrs.Groups[0] != "analytics" {
		t.Errorf("Groups = %v, want [analytics eng]", attrs.Groups)
	}
	if len(attrs.Roles) != 1 || attrs.Roles[0] != "ROLE_USER" {
		t.Errorf("Roles = %v, want [ROLE_USER]", attrs.Roles)
	}
}

func TestGetUserAttributes_NotFoundIsNotAnError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	attrs, err := c.GetUserAttributes(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("GetUserAttributes() error = %v, want nil for 404", err)
	}
	if len(attrs.Groups) != 0 || len(attrs.Roles) != 0 {
		t.Errorf("attrs = %+v, want zero-value", attrs)
	}
}

func TestGetUserAttributes_UnexpectedStatus(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.GetUserAttributes(context.Background(), "alice")
	if err == nil {
		t.Fatal("GetUserAttributes() expected error on 502, got nil")
	}
}

func TestClient_UsesBasicAuth(t *testing.T) {
	var gotUser, gotPass string
	var gotOK bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotOK = r.BasicAuth()
		w.Write([]byte(`[]`))
	})

	if _, err := c.FetchPolicies(context.Background(), "s3"); err != nil {
		t.Fatalf("FetchPolicies() error = %v", err)
	}
	if !gotOK || gotUser != "admin" || gotPass != "admin" {
		t.Errorf("BasicAuth = (%q, %q, %v), want (admin, admin, true)", gotUser, gotPass, gotOK)
	}
}
