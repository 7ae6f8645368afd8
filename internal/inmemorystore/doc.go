// Package inmemorystore provides a thread-safe, in-memory implementation
// of the componentstore.Store interface. Entries live for the lifetime of the
// process or until Clear is called.
package inmemorystore
