package client

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type call struct {
	method string
	req    any
	token  string
}

// fakeConn answers Invoke from canned replies keyed by full method name.
type fakeConn struct {
	grpc.ClientConnInterface

	mu      sync.Mutex
	calls   []call
	replies map[string]any
	errs    map[string]error
}

func newFakeConn() *fakeConn {
	return &fakeConn{replies: map[string]any{}, errs: map[string]error{}}
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var token string
	if md, ok := metadata.FromOutgoingContext(ctx); ok {
		if v := md.Get(common.AccessTokenHeaderName); len(v) > 0 {
			token = v[0]
		}
	}
	f.calls = append(f.calls, call{method: method, req: args, token: token})

	if err := f.errs[method]; err != nil {
		return err
	}
	if v, ok := f.replies[method]; ok {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		return json.Unmarshal(b, reply)
	}
	return nil
}

func (f *fakeConn) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.method == method {
			n++
		}
	}
	return n
}

func (f *fakeConn) last() call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type memStore struct {
	mu  sync.Mutex
	kv  map[string]string
	err error
}

func newMemStore() *memStore { return &memStore{kv: map[string]string{}} }

func (m *memStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *memStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.kv[key] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func newTestClient(conn *fakeConn, store TokenStore) *GRPCClient {
	c := newClient("bufnet", Options{Store: store})
	c.cc = conn
	return c
}
