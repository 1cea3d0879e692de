// Package idgen hands out document numbers (WV-, PJ-, HO-) backed by
// Snowflake ids, unique across instances as long as node ids differ.
package idgen

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

type Snowflake struct {
	node *snowflake.Node
}

func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("init snowflake node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

// Next returns prefix followed by a fresh id, e.g. "WV-1764912000123456789".
func (s *Snowflake) Next(prefix string) string {
	return prefix + s.node.Generate().String()
}
