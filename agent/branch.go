package agent

// buildBranchPath joins parent and child into a dotted branch identifier.
// Branches scope state mutations to a subtree of agents. Either side may be
// empty, in which case the other is returned unchanged.
func buildBranchPath(parent, child string) string {
	switch {
	case parent == "":
		return child
	case child == "":
		return parent
	}
	return parent + "." + child
}
