package rpc_test

import (
	"bytes"
	"crypto/sha1"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brindle-bt/brindle/bencode"
	"github.com/brindle-bt/brindle/quark"
	"github.com/brindle-bt/brindle/rpc"
	"github.com/brindle-bt/brindle/store"
	_ "github.com/brindle-bt/brindle/store/memory"
	"github.com/brindle-bt/brindle/variant"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.Open(&store.DriverConfig{Name: "memory"})
	require.NoError(t, err)

	srv := rpc.New("127.0.0.1:0", st, 5*time.Second)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postBencode(t *testing.T, url string, req *variant.Variant) *variant.Variant {
	t.Helper()
	body := bencode.Serialize(req)

	resp, err := http.Post(url+"/v1/call", "application/x-bencode", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	tree, _, err := bencode.Parse(respBody)
	require.NoError(t, err)
	return tree
}

func TestStorePutThenGetRoundTrips(t *testing.T) {
	ts := newTestServer(t)

	value := variant.NewDict(0)
	value.AddInt(quark.Intern("length"), 42)
	valueBytes := bencode.Serialize(value)

	putReq := variant.NewDict(2)
	putReq.AddStr(quark.KeyMethod, "store.put")
	putReq.AddStrView(quark.KeyValue, valueBytes)

	putResp := postBencode(t, ts.URL, putReq)
	digest, ok := putResp.FindStrView(quark.KeyKey)
	require.True(t, ok)
	assert.Equal(t, store.Address(valueBytes), string(digest))

	getReq := variant.NewDict(2)
	getReq.AddStr(quark.KeyMethod, "store.get")
	getReq.AddStrView(quark.KeyKey, digest)

	getResp := postBencode(t, ts.URL, getReq)
	found, ok := getResp.FindBool(quark.KeyFound)
	require.True(t, ok)
	assert.True(t, found)

	got, ok := getResp.FindStrView(quark.KeyValue)
	require.True(t, ok)
	assert.Equal(t, valueBytes, got)
}

func TestStoreDeleteThenGetReportsNotFound(t *testing.T) {
	ts := newTestServer(t)

	value := variant.NewDict(0)
	value.AddInt(quark.Intern("length"), 7)
	valueBytes := bencode.Serialize(value)

	putReq := variant.NewDict(2)
	putReq.AddStr(quark.KeyMethod, "store.put")
	putReq.AddStrView(quark.KeyValue, valueBytes)
	putResp := postBencode(t, ts.URL, putReq)
	digest, ok := putResp.FindStrView(quark.KeyKey)
	require.True(t, ok)

	deleteReq := variant.NewDict(2)
	deleteReq.AddStr(quark.KeyMethod, "store.delete")
	deleteReq.AddStrView(quark.KeyKey, digest)
	deleteResp := postBencode(t, ts.URL, deleteReq)
	deleted, ok := deleteResp.FindBool(quark.KeyDeleted)
	require.True(t, ok)
	assert.True(t, deleted)

	getReq := variant.NewDict(2)
	getReq.AddStr(quark.KeyMethod, "store.get")
	getReq.AddStrView(quark.KeyKey, digest)
	getResp := postBencode(t, ts.URL, getReq)
	found, ok := getResp.FindBool(quark.KeyFound)
	require.True(t, ok)
	assert.False(t, found)
}

func TestStoreDeleteUnknownKeyIsNotAnError(t *testing.T) {
	ts := newTestServer(t)

	deleteReq := variant.NewDict(2)
	deleteReq.AddStr(quark.KeyMethod, "store.delete")
	deleteReq.AddStr(quark.KeyKey, "0000000000000000000000000000000000000a")
	resp := postBencode(t, ts.URL, deleteReq)
	deleted, ok := resp.FindBool(quark.KeyDeleted)
	require.True(t, ok)
	assert.True(t, deleted)
}

func TestStoreGetMissingKeyReportsNotFound(t *testing.T) {
	ts := newTestServer(t)

	getReq := variant.NewDict(2)
	getReq.AddStr(quark.KeyMethod, "store.get")
	getReq.AddStr(quark.KeyKey, "0000000000000000000000000000000000000a")

	resp := postBencode(t, ts.URL, getReq)
	found, ok := resp.FindBool(quark.KeyFound)
	require.True(t, ok)
	assert.False(t, found)
}

func TestUnknownMethodReturnsError(t *testing.T) {
	ts := newTestServer(t)

	req := variant.NewDict(1)
	req.AddStr(quark.KeyMethod, "no.such.method")

	resp := postBencode(t, ts.URL, req)
	_, hasErr := resp.FindStrView(quark.KeyError)
	assert.True(t, hasErr)
}

func TestPutKeyMismatchIsRejected(t *testing.T) {
	ts := newTestServer(t)

	valueBytes := bencode.Serialize(variant.NewInt(1))
	wrongDigest := sha1.Sum([]byte("not the value"))

	req := variant.NewDict(3)
	req.AddStr(quark.KeyMethod, "store.put")
	req.AddStrView(quark.KeyValue, valueBytes)
	req.AddStrView(quark.KeyKey, wrongDigest[:])

	resp := postBencode(t, ts.URL, req)
	_, hasErr := resp.FindStrView(quark.KeyError)
	assert.True(t, hasErr)
}

func TestMissingMethodIsRejected(t *testing.T) {
	ts := newTestServer(t)

	req := variant.NewDict(0)
	resp := postBencode(t, ts.URL, req)
	_, hasErr := resp.FindStrView(quark.KeyError)
	assert.True(t, hasErr)
}
