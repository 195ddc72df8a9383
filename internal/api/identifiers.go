package api

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Identifiers issues client-side payment identifiers: one per submission,
// timestamp-ordered so the backend can deduplicate retried purchases.
type Identifiers struct {
	node *snowflake.Node
}

// NewIdentifiers constructs the generator.
func NewIdentifiers() (*Identifiers, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("init identifier node: %w", err)
	}
	return &Identifiers{node: node}, nil
}

// PaymentIdentifier returns a fresh idempotency token.
func (i *Identifiers) PaymentIdentifier() string {
	return "AMK-" + i.node.Generate().String()
}
