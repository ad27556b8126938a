package fsops

// Deleter abstracts filesystem delete operations
// Enables mocking in tests to prove which entries a sweep removes
type Deleter interface {
	Remove(path string) error
}
