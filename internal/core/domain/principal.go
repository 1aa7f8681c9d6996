package domain

// Principal identifies the caller of a request. The zero value is anonymous.
type Principal string

const (
	Anonymous Principal = ""
	Admin     Principal = "admin"
)
