package tenauth

// Role names recognized by the admission policy.
const (
	// RoleOperator is the platform-operator role, valid only on the main
	// domain.
	RoleOperator = "Operator"
	// Tenant-scoped roles, valid only on a resolved tenant domain.
	RoleTenantAdmin = "TenantAdmin"
	RoleAgent       = "Agent"
	RoleCustomer    = "Customer"
)

// RoleAllowedOnDomain decides whether a role may authenticate from the
// given domain class. The partition is strict: the operator role is allowed
// only on the main domain, every other role only on a tenant domain. No
// role is valid on both classes.
//
// Only the principal's primary (first-listed) role is evaluated by the
// login flow. Behavior for principals holding roles spanning both classes
// is deliberately not defined beyond that.
func RoleAllowedOnDomain(role string, isMainDomain bool) bool {
	if role == "" {
		return false
	}
	if role == RoleOperator {
		return isMainDomain
	}
	return !isMainDomain
}
