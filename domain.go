package tenauth

import (
	"context"
	"strings"
)

// DomainResolver maps inbound domains to tenant identifiers. It owns no
// persistent state: normalization and classification are pure, and tenant
// lookup delegates to the configured TenantDirectory.
type DomainResolver struct {
	config    DomainConfig
	directory TenantDirectory
}

func newDomainResolver(cfg DomainConfig, directory TenantDirectory) *DomainResolver {
	return &DomainResolver{config: cfg, directory: directory}
}

// IsMainDomain reports whether the normalized domain is one of the
// platform's own domains (allow-list match or the bare local root).
func (r *DomainResolver) IsMainDomain(domain string) bool {
	host := normalizeDomain(domain)
	if host == "" {
		return false
	}
	if r.config.LocalRoot != "" && host == r.config.LocalRoot {
		return true
	}
	for _, main := range r.config.MainDomains {
		if host == normalizeDomain(main) {
			return true
		}
	}
	return false
}

// ResolveTenantID extracts the candidate subdomain and looks it up in the
// tenant directory. Lookup failures of any kind degrade to "not found":
// resolution failure means "login rejected", never "service down".
func (r *DomainResolver) ResolveTenantID(ctx context.Context, domain string) (string, bool) {
	sub, ok := r.subdomain(domain)
	if !ok {
		return "", false
	}
	if r.directory == nil {
		return "", false
	}

	tenantID, err := r.directory.LookupTenant(ctx, sub)
	if err != nil || tenantID == "" {
		return "", false
	}
	return tenantID, true
}

// subdomain returns the leftmost label of the normalized host. A two-label
// host ending in the local root (e.g. "acme.localhost") still yields its
// one-label subdomain; a plain two-label host does not.
func (r *DomainResolver) subdomain(domain string) (string, bool) {
	host := normalizeDomain(domain)
	if host == "" || r.IsMainDomain(host) {
		return "", false
	}

	labels := strings.Split(host, ".")
	switch {
	case len(labels) >= 3:
		return labels[0], labels[0] != ""
	case len(labels) == 2 && r.config.LocalRoot != "" && labels[1] == r.config.LocalRoot:
		return labels[0], labels[0] != ""
	default:
		return "", false
	}
}

// normalizeDomain strips scheme, path, and port, and lowercases the host.
func normalizeDomain(domain string) string {
	host := strings.TrimSpace(strings.ToLower(domain))
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}
