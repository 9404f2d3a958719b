package solana

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     int               `json:"id"`
}

type testRPCServer struct {
	sync.Mutex

	t        *testing.T
	requests []rpcRequest
	handler  func(req rpcRequest) (status int, result interface{}, rpcErr map[string]interface{})
}

func newTestRPCServer(t *testing.T) (*testRPCServer, Client) {
	s := &testRPCServer{t: t}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		s.Lock()
		s.requests = append(s.requests, req)
		handler := s.handler
		s.Unlock()

		status, result, rpcErr := handler(req)

		// Gateways in front of RPC nodes fail without a JSON-RPC body.
		if status >= http.StatusInternalServerError && rpcErr == nil {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(http.StatusText(status)))
			return
		}

		body := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			body["error"] = rpcErr
		} else {
			body["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}))
	t.Cleanup(server.Close)

	return s, New(server.URL)
}

func (s *testRPCServer) calls() []rpcRequest {
	s.Lock()
	defer s.Unlock()
	return append([]rpcRequest(nil), s.requests...)
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	var expected Blockhash
	for i := range expected {
		expected[i] = byte(i + 1)
	}

	server, client := newTestRPCServer(t)
	server.handler = func(req rpcRequest) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, map[string]interface{}{
			"context": map[string]interface{}{"slot": 100},
			"value": map[string]interface{}{
				"blockhash":            base58.Encode(expected[:]),
				"lastValidBlockHeight": 200,
			},
		}, nil
	}

	for i := 0; i < 2; i++ {
		actual, err := client.GetLatestBlockhash(CommitmentFinalized)
		require.NoError(t, err)
		assert.Equal(t, expected, actual)
	}

	// No caching: every call reaches the node.
	calls := server.calls()
	require.Len(t, calls, 2)
	for _, call := range calls {
		assert.Equal(t, "getLatestBlockhash", call.Method)
		require.Len(t, call.Params, 1)

		var commitment Commitment
		require.NoError(t, json.Unmarshal(call.Params[0], &commitment))
		assert.Equal(t, CommitmentFinalized, commitment)
	}
}

func TestClient_GetAccountInfo(t *testing.T) {
	account := MustParsePublicKey("3h3R4eXHNoNi6wFsz7kaso8bKsSmpp4jbk2Ewe9afioc")
	data := []byte{1, 2, 3, 4, 5}

	server, client := newTestRPCServer(t)
	server.handler = func(req rpcRequest) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, map[string]interface{}{
			"context": map[string]interface{}{"slot": 100},
			"value": map[string]interface{}{
				"lamports":   1000,
				"owner":      base58.Encode(account),
				"data":       []string{base64.StdEncoding.EncodeToString(data), "base64"},
				"executable": false,
			},
		}, nil
	}

	info, err := client.GetAccountInfo(account, CommitmentConfirmed)
	require.NoError(t, err)
	assert.Equal(t, data, info.Data)
	assert.EqualValues(t, account, info.Owner)
	assert.EqualValues(t, 1000, info.Lamports)
	assert.False(t, info.Executable)

	calls := server.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "getAccountInfo", calls[0].Method)
	require.Len(t, calls[0].Params, 2)

	var address string
	require.NoError(t, json.Unmarshal(calls[0].Params[0], &address))
	assert.Equal(t, base58.Encode(account), address)

	var config map[string]string
	require.NoError(t, json.Unmarshal(calls[0].Params[1], &config))
	assert.Equal(t, "confirmed", config["commitment"])
	assert.Equal(t, "base64", config["encoding"])
}

func TestClient_GetAccountInfo_NotFound(t *testing.T) {
	server, client := newTestRPCServer(t)
	server.handler = func(req rpcRequest) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, map[string]interface{}{
			"context": map[string]interface{}{"slot": 100},
			"value":   nil,
		}, nil
	}

	_, err := client.GetAccountInfo(MustParsePublicKey("11111111111111111111111111111111"), CommitmentFinalized)
	assert.Equal(t, ErrNoAccountInfo, err)
}

func TestClient_GetSlot(t *testing.T) {
	server, client := newTestRPCServer(t)
	server.handler = func(req rpcRequest) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, 12345, nil
	}

	slot, err := client.GetSlot(CommitmentProcessed)
	require.NoError(t, err)
	assert.EqualValues(t, 12345, slot)
}

func TestClient_ErrorsAreNotRetried(t *testing.T) {
	for _, tc := range []struct {
		status   int
		rpcErr   map[string]interface{}
		expected error
	}{
		{http.StatusOK, map[string]interface{}{"code": 429, "message": "too many requests"}, ErrRateLimited},
		{http.StatusTooManyRequests, map[string]interface{}{"code": 429, "message": "too many requests"}, ErrRateLimited},
		{http.StatusOK, map[string]interface{}{"code": rpcNodeUnhealthyCode, "message": "node is behind"}, ErrServiceError},
		{http.StatusBadGateway, nil, ErrServiceError},
	} {
		server, client := newTestRPCServer(t)
		server.handler = func(req rpcRequest) (int, interface{}, map[string]interface{}) {
			return tc.status, nil, tc.rpcErr
		}

		_, err := client.GetLatestBlockhash(CommitmentFinalized)
		require.Error(t, err)
		assert.True(t, errors.Is(err, tc.expected), err.Error())
		assert.Len(t, server.calls(), 1)
	}

	server, client := newTestRPCServer(t)
	server.handler = func(req rpcRequest) (int, interface{}, map[string]interface{}) {
		return http.StatusOK, nil, map[string]interface{}{"code": -32602, "message": "invalid params"}
	}
	_, err := client.GetSlot(CommitmentFinalized)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrServiceError))
}
