package domain

// SessionMap maps suite id to the live token for that suite. A missing key and an
// empty value both mean signed out.
type SessionMap map[string]string

// Token returns the stored token for suiteID, or "" when signed out.
func (m SessionMap) Token(suiteID string) string {
	if m == nil {
		return ""
	}
	return m[suiteID]
}

// Clone returns an independent copy.
func (m SessionMap) Clone() SessionMap {
	out := make(SessionMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
