// Package pipeline assembles the configured blocks into a graph and walks
// a message through it, fanning out at each block's connections until
// every branch reaches a sink (a connector's egress).
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/yaoapp/kun/exception"
	"github.com/yaoapp/kun/log"

	"github.com/relaywire/relay/internal/block"
	"github.com/relaywire/relay/internal/message"
)

// Collected is one message routed to a sink (connector egress) during a
// single pipeline walk.
type Collected struct {
	SinkIndex int
	Message   message.Message
}

// Pipeline owns the constructed block table and validates it for cycles
// at construction time.
type Pipeline struct {
	blocks []*block.Handle
}

// New constructs every block from its config, checks that every Block
// connection between blocks targets an existing block, and checks the
// resulting graph for cycles. When cycles are found and ignoreCycles is
// false, the aggregate error lists one path for each block from which a
// cycle is reachable, so every problem in the config is reported together
// instead of one at a time.
func New(configs []block.Config, ignoreCycles bool) (*Pipeline, error) {
	blocks := make([]*block.Handle, 0, len(configs))
	var buildErr *multierror.Error

	for i, cfg := range configs {
		handle, err := block.Make(cfg)
		if err != nil {
			buildErr = multierror.Append(buildErr, fmt.Errorf("block %d: %w", i, err))
			continue
		}
		blocks = append(blocks, handle)
	}

	if buildErr.ErrorOrNil() != nil {
		return nil, buildErr
	}

	for i, handle := range blocks {
		for _, to := range handle.To {
			if to.Kind == block.ConnectionBlock && (to.Index < 0 || to.Index >= len(blocks)) {
				buildErr = multierror.Append(buildErr, fmt.Errorf("block %d: connection to missing block %d", i, to.Index))
			}
		}
	}
	if buildErr.ErrorOrNil() != nil {
		return nil, buildErr
	}

	p := &Pipeline{blocks: blocks}

	cycles := p.findCycles()
	if len(cycles) > 0 {
		var cycleErr *multierror.Error
		for _, path := range cycles {
			cycleErr = multierror.Append(cycleErr, fmt.Errorf("cycle: %s", formatPath(path)))
		}

		if ignoreCycles {
			log.Warn("[Pipeline] ignoring %d cycle(s) because of --ignore-cycles:\n%s", len(cycles), cycleErr.Error())
		} else {
			return nil, fmt.Errorf("pipeline: cycles detected, not all invariants are covered; rerun with --ignore-cycles to proceed:\n%w", cycleErr)
		}
	}

	return p, nil
}

func formatPath(path []int) string {
	parts := make([]string, len(path))
	for i, idx := range path {
		parts[i] = fmt.Sprintf("Block %d", idx)
	}
	return strings.Join(parts, " -> ")
}

// HandleWithConnections walks one message across a set of outgoing
// connections, recursing into Block edges and appending to collector for
// every Sink edge reached. Each connection gets its own cloned message so
// fan-out branches never share mutable state.
func (p *Pipeline) HandleWithConnections(ctx context.Context, to []block.Connection, msg message.Message, collector *[]Collected) error {
	for _, conn := range to {
		switch conn.Kind {
		case block.ConnectionBlock:
			if err := p.Handle(ctx, conn.Index, msg.Clone(), collector); err != nil {
				return err
			}
		case block.ConnectionSink:
			*collector = append(*collector, Collected{SinkIndex: conn.Index, Message: msg.Clone()})
		default:
			return fmt.Errorf("pipeline: unknown connection kind %q", conn.Kind)
		}
	}
	return nil
}

// Handle executes a single block and recurses into its outgoing
// connections for every message it produced. New checks every Block(i)
// connection between blocks against the block table; connections that
// start at a connector are not checked there. A missing index panics
// rather than returning an error a caller could silently swallow.
func (p *Pipeline) Handle(ctx context.Context, blockIdx int, msg message.Message, collector *[]Collected) error {
	if blockIdx < 0 || blockIdx >= len(p.blocks) {
		exception.New("pipeline: missing block with index %d", 500, blockIdx).Throw()
	}
	handle := p.blocks[blockIdx]

	next, err := handle.Block.Exec(ctx, msg)
	if err != nil {
		return fmt.Errorf("pipeline: block %d: %w", blockIdx, err)
	}

	switch {
	case len(next) == 0:
		log.Debug("[Pipeline] block %d dropped the message", blockIdx)
	case len(next) > 1:
		log.Debug("[Pipeline] block %d fanned out to %d messages", blockIdx, len(next))
	}

	for _, m := range next {
		if err := p.HandleWithConnections(ctx, handle.To, m, collector); err != nil {
			return err
		}
	}
	return nil
}

// findCycles reports at most one cyclic path per starting block, walking
// only Block edges (Sink edges are inert terminals and can't cycle).
func (p *Pipeline) findCycles() [][]int {
	var cycles [][]int
	for idx := range p.blocks {
		if path, ok := p.findCycleFrom(idx); ok {
			cycles = append(cycles, path)
		}
	}
	return cycles
}

func (p *Pipeline) findCycleFrom(blockIdx int) ([]int, bool) {
	path := []int{blockIdx}
	for _, to := range p.blocks[blockIdx].To {
		if to.Kind != block.ConnectionBlock {
			continue
		}
		if p.traverse(&path, to.Index) {
			return path, true
		}
	}
	return nil, false
}

func (p *Pipeline) traverse(path *[]int, blockIdx int) bool {
	for _, visited := range *path {
		if visited == blockIdx {
			return true
		}
	}

	*path = append(*path, blockIdx)
	for _, to := range p.blocks[blockIdx].To {
		if to.Kind != block.ConnectionBlock {
			continue
		}
		if p.traverse(path, to.Index) {
			return true
		}
	}
	*path = (*path)[:len(*path)-1]
	return false
}
