// Package store defines the content-addressed byte-blob storage interface
// this module's RPC layer sits on top of, and the driver registry that lets
// a configuration name pick a concrete backend at startup.
package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// DriverConfig names a backend and carries its backend-specific parameters,
// read verbatim out of the store block of the YAML configuration file.
type DriverConfig struct {
	Name   string            `yaml:"driver"`
	Params map[string]string `yaml:"params,omitempty"`
}

// Store persists canonical bencode blobs, addressed by the SHA-1 digest of
// their contents (see Address). Put is idempotent: storing the same
// bytes twice under the same digest is a no-op success, never an error.
type Store interface {
	// Put stores b under its content address and returns that address.
	Put(ctx context.Context, b []byte) (digest string, err error)

	// Get returns the bytes previously stored under digest. Returns
	// errors.NotFound if digest is unknown to this store.
	Get(ctx context.Context, digest string) (b []byte, err error)

	// Has reports whether digest is present, without transferring its
	// bytes.
	Has(ctx context.Context, digest string) (bool, error)

	// Delete removes digest, if present. Deleting an unknown digest is a
	// no-op success, matching Put's idempotence in the other direction.
	Delete(ctx context.Context, digest string) error

	// Close releases any resources (connections, file handles) the store
	// holds open.
	Close() error
}

// Driver constructs a Store from a DriverConfig. A backend package
// registers one at init time via Register.
type Driver interface {
	New(cfg *DriverConfig) (Store, error)
}

var drivers = make(map[string]Driver)

// Register makes a driver available under name for Open to find. Panics if
// driver is nil or name is already registered — both are programmer errors
// caught at init time, not data errors a caller could recover from.
func Register(name string, driver Driver) {
	if driver == nil {
		panic("store: could not register nil Driver")
	}
	if _, dup := drivers[name]; dup {
		panic("store: could not register duplicate Driver: " + name)
	}
	drivers[name] = driver
}

// Open returns a Store built by the driver named in cfg.Name.
func Open(cfg *DriverConfig) (Store, error) {
	driver, ok := drivers[cfg.Name]
	if !ok {
		return nil, fmt.Errorf("store: unknown Driver %q (forgotten import?)", cfg.Name)
	}
	return driver.New(cfg)
}

// Address computes the content address of b: the hex-encoded SHA-1 digest
// of its bytes. Every backend uses this as its key derivation so that the
// same canonical bencode blob always lands at the same address regardless
// of which backend stored it.
func Address(b []byte) string {
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
