package opclient

import (
	"slices"
	"strings"
)

// DefaultMandatoryScopes are the scopes every exchange carries regardless of
// what the caller asked for. The authorization server rejects assertions that
// omit the scopes the client registration requires, so they are merged in
// unconditionally.
var DefaultMandatoryScopes = []string{
	"dvl_dcbaas_app_application_admin",
	"dvl_dcbaas_app_certificate_admin",
	"dvl_dcbaas_app_config_admin",
	"dvl_dcbaas_app_helpdesk",
	"dvl_dcbaas_info",
	"dvl_dcbaas_org_certificate_admin_organization",
	"dvl_dcbaas_org_workflow_operator",
	"vo_info",
}

// MergeScopes unions the caller's whitespace-delimited scope string with the
// mandatory set and returns a deduplicated, sorted, space-joined scope string.
// Merging an already-merged result is a no-op.
func MergeScopes(mandatory []string, userScope string) string {
	seen := make(map[string]struct{}, len(mandatory))
	merged := make([]string, 0, len(mandatory))

	add := func(scope string) {
		if scope == "" {
			return
		}
		if _, ok := seen[scope]; ok {
			return
		}
		seen[scope] = struct{}{}
		merged = append(merged, scope)
	}

	for _, s := range mandatory {
		add(s)
	}
	for _, s := range strings.Fields(userScope) {
		add(s)
	}

	slices.Sort(merged)
	return strings.Join(merged, " ")
}
