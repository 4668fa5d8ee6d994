package graph

import (
	"crypto/sha256"
	"encoding/hex"
)

// NodeID is a content-addressed identifier derived from a node's path.
// Identical build inputs therefore produce identical IDs.
type NodeID [sha256.Size]byte

// ZeroID is the unset NodeID; as a parent it denotes a graph root.
var ZeroID NodeID

// NewNodeID hashes a node path such as "absorber/stairway/tread_003".
func NewNodeID(path string) NodeID {
	return NodeID(sha256.Sum256([]byte(path)))
}

func (id NodeID) IsZero() bool {
	return id == ZeroID
}

func (id NodeID) String() string {
	return hex.EncodeToString(id[:])
}

// Short returns the first 8 hex digits, for messages.
func (id NodeID) Short() string {
	return hex.EncodeToString(id[:4])
}

func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}
