package constants

// Scope selects which network a command operates on.
type Scope string

const (
	// ScopeLocal uses the network stored under the project root.
	ScopeLocal Scope = "local"

	// ScopeGlobal uses the network stored under the user's home directory.
	ScopeGlobal Scope = "global"
)

// Valid returns true if the scope is a recognized value.
func (s Scope) Valid() bool {
	switch s {
	case ScopeLocal, ScopeGlobal:
		return true
	}
	return false
}

// String returns the string representation of the scope.
func (s Scope) String() string {
	return string(s)
}
