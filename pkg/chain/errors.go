package chain

import (
	"errors"
	"strings"
)

var (
	// ErrConnection means the node endpoint could not be reached.
	ErrConnection = errors.New("chain: cannot connect to node")
	// ErrUnknownBlock means the node does not recognize the requested block hash.
	ErrUnknownBlock = errors.New("chain: unknown block")
	// ErrSnapshotUnavailable means the node no longer retains state for the
	// bound block (pruned / discarded).
	ErrSnapshotUnavailable = errors.New("chain: snapshot state unavailable")
	// ErrTransientIO is a network or timeout failure on a single call. The
	// client performs no retry; callers decide whether to re-run.
	ErrTransientIO = errors.New("chain: transient i/o failure")
)

// mapRPCError classifies a JSON-RPC error by the node's message text. The
// substrate error surface has no stable codes for these cases, so text
// matching is the only handle available.
func mapRPCError(code int, message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "discarded"), strings.Contains(lower, "pruned"):
		return ErrSnapshotUnavailable
	case strings.Contains(lower, "unknown block"), strings.Contains(lower, "not found"):
		return ErrUnknownBlock
	default:
		return &RPCError{Code: code, Message: message}
	}
}

// RPCError is a node-side error that maps to no known category.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return "chain: rpc error " + e.Message
}
