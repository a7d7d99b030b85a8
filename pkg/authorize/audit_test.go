package authorize

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Alijeyrad/serviceflow_backend/pkg/reqctx"
)

func auditRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		if err := dec.Decode(&rec); err != nil {
			t.Fatalf("decode log line: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestAuditedDecisionCarriesBusinessAndPermission(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auth := NewAuditedAuthorization(newTestAuth(t, DefaultConfig()), logger)

	ctx := reqctx.WithRequestMeta(context.Background(), &reqctx.RequestMeta{RequestID: "req-42"})
	if err := AssignBusinessRole(ctx, auth, "cron", testBusiness, RoleAutomation); err != nil {
		t.Fatal(err)
	}
	buf.Reset()

	allowed, err := auth.Enforce(ctx, "cron", BusinessDomain(testBusiness), ResourceJob, ActionGenerate)
	if err != nil {
		t.Fatal(err)
	}
	if allowed {
		t.Fatal("automation role has no seeded policy in this enforcer")
	}

	recs := auditRecords(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	want := map[string]any{
		"msg":         "authz_decision",
		"level":       "WARN",
		"component":   "authz",
		"business_id": testBusiness,
		"permission":  "job:generate",
		"request_id":  "req-42",
		"subject":     "cron",
		"allowed":     false,
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestAuditedPolicyChange(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	auth := NewAuditedAuthorization(newTestAuth(t, DefaultConfig()), logger)

	if _, err := auth.AddPermission(context.Background(), RoleAutomation, WildcardDomain, ResourceJob, ActionGenerate, EffectAllow); err != nil {
		t.Fatal(err)
	}

	recs := auditRecords(t, &buf)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	rec := recs[0]
	if rec["operation"] != "add_permission" || rec["permission"] != "job:generate" || rec["changed"] != true {
		t.Errorf("record = %v", rec)
	}
	if _, ok := rec["business_id"]; ok {
		t.Error("wildcard domain should not carry a business id")
	}
}

func TestBusinessFromDomain(t *testing.T) {
	tests := []struct {
		domain Domain
		want   string
	}{
		{BusinessDomain(testBusiness), testBusiness},
		{DomainSys, ""},
		{WildcardDomain, ""},
	}
	for _, tt := range tests {
		if got := BusinessFromDomain(tt.domain); got != tt.want {
			t.Errorf("BusinessFromDomain(%q) = %q, want %q", tt.domain, got, tt.want)
		}
	}
}
