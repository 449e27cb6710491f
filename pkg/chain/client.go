package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Client speaks JSON-RPC 2.0 over a websocket to a substrate-style node.
// Calls are serialized: the aggregation engine is strictly sequential (page
// N+1 cannot be requested before page N returns), so one in-flight request
// is all the workload ever needs.
type Client struct {
	url     string
	timeout time.Duration

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID uint64
}

// Opts is the set of options for a new Client.
type Opts struct {
	URL     string
	Timeout time.Duration
	Dialer  *websocket.Dialer
}

// Dial connects to the node. Failures wrap ErrConnection.
func Dial(ctx context.Context, o Opts) (*Client, error) {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	dialer := o.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, o.URL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, o.URL, err)
	}
	return &Client{url: o.URL, timeout: o.Timeout, conn: conn}, nil
}

// Close tears down the websocket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorBody   `json:"error"`
}

// call performs one JSON-RPC round trip and unmarshals the result into out.
// Transport failures wrap ErrTransientIO; node-side errors go through
// mapRPCError. Cancellation is observed between messages only: a cancelled
// ctx does not interrupt a blocking read, but the read deadline (the ctx
// deadline or the client timeout, whichever is sooner) bounds the wait.
func (c *Client) call(ctx context.Context, method string, params []any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("%w: client closed", ErrConnection)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	id := atomic.AddUint64(&c.nextID, 1)
	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	if params == nil {
		req.Params = []any{}
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrTransientIO, method, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTransientIO, method, err)
		}
		var resp rpcResponse
		if err := c.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("%w: read %s: %v", ErrTransientIO, method, err)
		}
		// Subscription notifications and stale replies are not ours.
		if resp.ID != id {
			continue
		}
		if resp.Error != nil {
			return fmt.Errorf("%s: %w", method, mapRPCError(resp.Error.Code, resp.Error.Message))
		}
		if out != nil {
			if err := json.Unmarshal(resp.Result, out); err != nil {
				return fmt.Errorf("%s: decode result: %w", method, err)
			}
		}
		return nil
	}
}
