package rpc

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/brindle-bt/brindle/bencode"
	"github.com/brindle-bt/brindle/errors"
	"github.com/brindle-bt/brindle/pkg/metrics"
	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/variant"
)

// handleStorePut canonicalizes the bencode blob under "value", stores it,
// and returns its content address (hex) under "key". If the caller
// supplied a non-empty raw 20-byte "key", it must match the computed
// digest, or the call fails with IllegalSequence — this lets a caller
// detect corruption in transit without a second round trip.
func (s *Server) handleStorePut(ctx context.Context, req *variant.Variant) (*variant.Variant, error) {
	value, ok := req.FindStrView(quark.KeyValue)
	if !ok {
		return nil, errors.NewIllegalSequence("rpc: store.put missing value")
	}

	tree, _, err := bencode.Parse(value)
	if err != nil {
		return nil, err
	}
	canonical := bencode.Serialize(tree)

	if suggested, ok := req.FindStrView(quark.KeyKey); ok && len(suggested) > 0 {
		if len(suggested) != sha1.Size {
			return nil, errors.NewIllegalSequence("rpc: store.put key must be a raw 20-byte sha1")
		}
		sum := sha1.Sum(canonical)
		if !bytes.Equal(sum[:], suggested) {
			return nil, errors.NewIllegalSequence("rpc: store.put key does not match value's digest")
		}
	}

	digest, err := s.store.Put(ctx, canonical)
	if err != nil {
		return nil, err
	}

	resp := variant.NewDict(1)
	resp.AddStr(quark.KeyKey, digest)
	return resp, nil
}

// handleStoreGet looks up the hex-encoded content address under "key" and
// returns its bytes, or found=false if absent.
func (s *Server) handleStoreGet(ctx context.Context, req *variant.Variant) (*variant.Variant, error) {
	keyBytes, ok := req.FindStrView(quark.KeyKey)
	if !ok || len(keyBytes) == 0 {
		return nil, errors.NewIllegalSequence("rpc: store.get missing key")
	}

	if _, err := hex.DecodeString(string(keyBytes)); err != nil {
		return nil, errors.NewIllegalSequence("rpc: store.get key must be hex")
	}

	value, err := s.store.Get(ctx, string(keyBytes))
	resp := variant.NewDict(2)
	if errors.CodeOf(err) == errors.NotFound {
		metrics.StoreMissesTotal.Inc()
		resp.AddBool(quark.KeyFound, false)
		return resp, nil
	}
	if err != nil {
		return nil, err
	}

	metrics.StoreHitsTotal.Inc()
	resp.AddBool(quark.KeyFound, true)
	resp.AddStr(quark.KeyValue, string(value))
	return resp, nil
}

// handleStoreDelete removes the hex-encoded content address under "key",
// if present. Deleting an unknown key is not an error, matching the
// underlying store.Delete's idempotence contract.
func (s *Server) handleStoreDelete(ctx context.Context, req *variant.Variant) (*variant.Variant, error) {
	keyBytes, ok := req.FindStrView(quark.KeyKey)
	if !ok || len(keyBytes) == 0 {
		return nil, errors.NewIllegalSequence("rpc: store.delete missing key")
	}

	if _, err := hex.DecodeString(string(keyBytes)); err != nil {
		return nil, errors.NewIllegalSequence("rpc: store.delete key must be hex")
	}

	if err := s.store.Delete(ctx, string(keyBytes)); err != nil {
		return nil, err
	}

	resp := variant.NewDict(1)
	resp.AddBool(quark.KeyDeleted, true)
	return resp, nil
}
