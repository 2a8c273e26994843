package model

// Category groups transactions. Its Kind is conventionally, but not necessarily, the kind of
// the transactions filed under it.
type Category struct {
	Name        string
	Description string
	Kind        Kind
	ID          int64
}
