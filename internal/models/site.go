package models

// Site holds per-site workflow configuration. RoleSettings and
// UserOverrides feed the permission gate; CMSystemType selects the RFA
// approval depth.
type Site struct {
	SiteID       string       `firestore:"siteId"`
	ShortName    string       `firestore:"shortName"`
	ProjectName  string       `firestore:"projectName,omitempty"`
	CMSystemType CMSystemType `firestore:"cmSystemType"`

	// RoleSettings[documentType][action] lists the roles allowed to
	// perform the action, replacing the hard-coded defaults when
	// non-empty.
	RoleSettings map[string]map[string][]Role `firestore:"roleSettings,omitempty"`

	// UserOverrides[userId][documentType][action] is authoritative
	// when present, regardless of the user's role.
	UserOverrides map[string]map[string]map[string]bool `firestore:"userOverrides,omitempty"`
}

// RolesFor returns the configured role list for (documentType, action),
// or nil when the site does not override the default.
func (s *Site) RolesFor(docType DocumentType, action Action) []Role {
	if s == nil || s.RoleSettings == nil {
		return nil
	}
	byAction, ok := s.RoleSettings[string(docType)]
	if !ok {
		return nil
	}
	return byAction[string(action)]
}

// OverrideFor returns the per-user override for (user, documentType,
// action) and whether one is defined.
func (s *Site) OverrideFor(userID string, docType DocumentType, action Action) (bool, bool) {
	if s == nil || s.UserOverrides == nil {
		return false, false
	}
	byType, ok := s.UserOverrides[userID]
	if !ok {
		return false, false
	}
	byAction, ok := byType[string(docType)]
	if !ok {
		return false, false
	}
	v, ok := byAction[string(action)]
	return v, ok
}
