package groups

import "strings"

// Fixed group names.
const (
	Printers      = "printers"
	Notifications = "notifications"
	Owners        = "owners"
)

const customerPrefix = "customer_"

// Sanitize rewrites a customer identity into the group-name alphabet by
// replacing "@" with "_at_" and "." with "_dot_". It is deterministic but
// not injective: "a@b" and "a_at_b" map to the same name.
func Sanitize(identity string) string {
	return strings.ReplaceAll(strings.ReplaceAll(identity, "@", "_at_"), ".", "_dot_")
}

// CustomerGroup returns the group a customer's sessions join.
func CustomerGroup(identity string) string {
	return customerPrefix + Sanitize(identity)
}
