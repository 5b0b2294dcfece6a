package domain

// Credential is the stored record for one username. Password holds a
// bcrypt hash, or the raw password for records written by older releases.
type Credential struct {
	Password string `json:"password"`
}

// Credentials maps username to its credential record.
type Credentials map[string]Credential

// Has reports whether username is registered.
func (c Credentials) Has(username string) bool {
	_, ok := c[username]
	return ok
}
