package authorize

import (
	"context"
	"log/slog"
	"strings"
	"time"

	casbin "github.com/casbin/casbin/v2"

	"github.com/Alijeyrad/serviceflow_backend/pkg/reqctx"
)

// AuditedAuthorization logs every decision and policy change made through
// the wrapped IAuthorization. Decision records carry the business and the
// "resource:action" permission so a single job:generate call can be traced
// from the request id to the casbin result.
type AuditedAuthorization struct {
	inner  IAuthorization
	logger *slog.Logger
}

func NewAuditedAuthorization(inner IAuthorization, logger *slog.Logger) IAuthorization {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditedAuthorization{inner: inner, logger: logger.With("component", "authz")}
}

// Permission formats a resource/action pair as "job:generate".
func Permission(object Resource, action Action) string {
	return string(object) + ":" + string(action)
}

// BusinessFromDomain returns the business id of a biz: domain, or "" for
// sys and wildcard domains.
func BusinessFromDomain(d Domain) string {
	id, _ := strings.CutPrefix(string(d), string(DomainPrefixBusiness))
	if id == string(d) {
		return ""
	}
	return id
}

// requestAttrs adds the request id and session when middleware put them on ctx.
func requestAttrs(ctx context.Context, attrs []any) []any {
	if rid := reqctx.RequestIDFromContext(ctx); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	if sid := reqctx.SessionFromContext(ctx); sid != "" {
		attrs = append(attrs, "session_id", sid)
	}
	return attrs
}

func domainAttrs(domain Domain) []any {
	attrs := []any{"domain", string(domain)}
	if biz := BusinessFromDomain(domain); biz != "" {
		attrs = append(attrs, "business_id", biz)
	}
	return attrs
}

func (a *AuditedAuthorization) Enforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) (bool, error) {
	start := time.Now()
	allowed, err := a.inner.Enforce(ctx, subject, domain, object, action)

	attrs := append([]any{"subject", string(subject)}, domainAttrs(domain)...)
	attrs = append(attrs,
		"permission", Permission(object, action),
		"allowed", allowed,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	attrs = requestAttrs(ctx, attrs)

	level := slog.LevelInfo
	switch {
	case err != nil:
		level = slog.LevelError
		attrs = append(attrs, "error", err.Error())
	case !allowed:
		level = slog.LevelWarn
	}
	a.logger.Log(ctx, level, "authz_decision", attrs...)

	return allowed, err
}

func (a *AuditedAuthorization) MustEnforce(ctx context.Context, subject GroupSubject, domain Domain, object Resource, action Action) error {
	ok, err := a.Enforce(ctx, subject, domain, object, action)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// logChange records one role or policy mutation.
func (a *AuditedAuthorization) logChange(ctx context.Context, msg, operation string, changed bool, err error, attrs ...any) {
	attrs = append([]any{"operation", operation, "changed", changed}, attrs...)
	attrs = requestAttrs(ctx, attrs)
	if err != nil {
		a.logger.ErrorContext(ctx, msg, append(attrs, "error", err.Error())...)
		return
	}
	a.logger.InfoContext(ctx, msg, attrs...)
}

func (a *AuditedAuthorization) AddRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	added, err := a.inner.AddRoleForUserInDomain(ctx, subject, role, domain)
	a.logChange(ctx, "authz_role_change", "add_role", added, err,
		append([]any{"subject", string(subject), "role", string(role)}, domainAttrs(domain)...)...)
	return added, err
}

func (a *AuditedAuthorization) RemoveRoleForUserInDomain(ctx context.Context, subject GroupSubject, role Role, domain Domain) (bool, error) {
	removed, err := a.inner.RemoveRoleForUserInDomain(ctx, subject, role, domain)
	a.logChange(ctx, "authz_role_change", "remove_role", removed, err,
		append([]any{"subject", string(subject), "role", string(role)}, domainAttrs(domain)...)...)
	return removed, err
}

func (a *AuditedAuthorization) GetRolesForUserInDomain(ctx context.Context, subject GroupSubject, domain Domain) ([]Role, error) {
	return a.inner.GetRolesForUserInDomain(ctx, subject, domain)
}

func (a *AuditedAuthorization) AddPermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	added, err := a.inner.AddPermission(ctx, role, domain, object, action, effect)
	a.logChange(ctx, "authz_permission_change", "add_permission", added, err,
		append([]any{"role", string(role), "permission", Permission(object, action), "effect", string(effect)}, domainAttrs(domain)...)...)
	return added, err
}

func (a *AuditedAuthorization) RemovePermission(ctx context.Context, role Role, domain Domain, object Resource, action Action, effect PolicyEffect) (bool, error) {
	removed, err := a.inner.RemovePermission(ctx, role, domain, object, action, effect)
	a.logChange(ctx, "authz_permission_change", "remove_permission", removed, err,
		append([]any{"role", string(role), "permission", Permission(object, action), "effect", string(effect)}, domainAttrs(domain)...)...)
	return removed, err
}

func (a *AuditedAuthorization) Raw() *casbin.DistributedEnforcer {
	return a.inner.Raw()
}
