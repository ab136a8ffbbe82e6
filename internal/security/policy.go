package security

// IsAdmin is the single authorization predicate for privileged actions
// (dataset upload, request approval/rejection, history listing). Every
// privileged entry point calls it rather than comparing role strings
// inline, so the rule is one named, testable unit.
func IsAdmin(role string) bool {
	return role == "admin"
}
