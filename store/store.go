// Package store is the device-local persistent key-value store backing the
// session layer. Three backends share one small contract: in-memory for
// tests, a JSON file per key for simple deployments, and sqlite when the
// host app already carries a database.
package store

// Store is a synchronous string-keyed byte store. Get reports presence
// explicitly; Delete of an absent key is not an error, which is what makes
// logout idempotent.
type Store interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
