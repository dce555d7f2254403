package tenauth

import (
	"context"
	"errors"
	"testing"
)

func testResolver(directory TenantDirectory) *DomainResolver {
	return newDomainResolver(DomainConfig{
		MainDomains:    []string{"admin.example.com", "Example.COM"},
		LocalRoot:      "localhost",
		SystemTenantID: "system",
	}, directory)
}

func TestIsMainDomain(t *testing.T) {
	resolver := testResolver(nil)

	cases := []struct {
		domain string
		want   bool
	}{
		{"admin.example.com", true},
		{"ADMIN.EXAMPLE.COM", true},
		{"https://admin.example.com/login", true},
		{"admin.example.com:8443", true},
		{"admin.example.com.", true},
		{"example.com", true}, // listed main domain, normalized
		{"localhost", true},
		{"localhost:3000", true},
		{"acme.example.com", false},
		{"acme.localhost", false},
		{"example.org", false},
		{"", false},
		{"   ", false},
	}

	for _, tc := range cases {
		if got := resolver.IsMainDomain(tc.domain); got != tc.want {
			t.Errorf("IsMainDomain(%q) = %v, want %v", tc.domain, got, tc.want)
		}
	}
}

func TestSubdomainExtraction(t *testing.T) {
	resolver := testResolver(StaticTenantDirectory{
		"acme":  "tenant-acme",
		"globe": "tenant-globe",
	})

	cases := []struct {
		domain     string
		wantTenant string
		wantOK     bool
	}{
		{"acme.example.com", "tenant-acme", true},
		{"https://acme.example.com/login?next=/", "tenant-acme", true},
		{"ACME.Example.Com:443", "tenant-acme", true},
		{"globe.eu.example.com", "tenant-globe", true},
		{"acme.localhost", "tenant-acme", true},
		{"acme.localhost:3000", "tenant-acme", true},
		{"ghost.example.com", "", false}, // unknown subdomain
		{"example.org", "", false},       // two labels, not local root
		{"localhost", "", false},         // main domain, no subdomain
		{"admin.example.com", "", false}, // main domain wins over extraction
		{".example.com", "", false},      // empty leftmost label
		{"", "", false},
	}

	for _, tc := range cases {
		tenantID, ok := resolver.ResolveTenantID(context.Background(), tc.domain)
		if ok != tc.wantOK || tenantID != tc.wantTenant {
			t.Errorf("ResolveTenantID(%q) = (%q, %v), want (%q, %v)", tc.domain, tenantID, ok, tc.wantTenant, tc.wantOK)
		}
	}
}

type failingDirectory struct{}

func (failingDirectory) LookupTenant(context.Context, string) (string, error) {
	return "", errors.New("directory down")
}

func TestResolutionFailsClosed(t *testing.T) {
	cases := []struct {
		name      string
		directory TenantDirectory
	}{
		{"nil directory", nil},
		{"failing directory", failingDirectory{}},
		{"empty answer", StaticTenantDirectory{"acme": ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := testResolver(tc.directory)
			if tenantID, ok := resolver.ResolveTenantID(context.Background(), "acme.example.com"); ok || tenantID != "" {
				t.Fatalf("got (%q, %v), want fail-closed not-found", tenantID, ok)
			}
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Example.COM", "example.com"},
		{"https://acme.example.com/a/b", "acme.example.com"},
		{"http://acme.example.com:8080", "acme.example.com"},
		{"acme.example.com.", "acme.example.com"},
		{"  acme.example.com  ", "acme.example.com"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := normalizeDomain(tc.in); got != tc.want {
			t.Errorf("normalizeDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
