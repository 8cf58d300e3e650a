package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relaywire/relay/internal/block"
	"github.com/relaywire/relay/internal/message"
	"github.com/relaywire/relay/internal/pipeline"
)

func TestLinearPipelineReachesSink(t *testing.T) {
	configs := []block.Config{
		{Type: "AddLeadingSlash", To: []block.Connection{{Kind: block.ConnectionBlock, Index: 1}}},
		{Type: "RemoveBody", To: []block.Connection{{Kind: block.ConnectionSink, Index: 0}}},
	}

	p, err := pipeline.New(configs, false)
	assert.NoError(t, err)

	var collected []pipeline.Collected
	err = p.Handle(context.Background(), 0, message.Message{Topic: "a/b", Data: message.String("x")}, &collected)
	assert.NoError(t, err)
	assert.Len(t, collected, 1)
	assert.Equal(t, "/a/b", collected[0].Message.Topic)
	assert.Equal(t, message.KindEmpty, collected[0].Message.Data.Kind)
}

func TestFanOutToMultipleSinks(t *testing.T) {
	configs := []block.Config{
		{Type: "AddLeadingSlash", To: []block.Connection{
			{Kind: block.ConnectionSink, Index: 0},
			{Kind: block.ConnectionSink, Index: 1},
		}},
	}

	p, err := pipeline.New(configs, false)
	assert.NoError(t, err)

	var collected []pipeline.Collected
	err = p.Handle(context.Background(), 0, message.Message{Topic: "x"}, &collected)
	assert.NoError(t, err)
	assert.Len(t, collected, 2)
}

func TestCycleDetectionFailsConstructionByDefault(t *testing.T) {
	configs := []block.Config{
		{Type: "AddLeadingSlash", To: []block.Connection{{Kind: block.ConnectionBlock, Index: 1}}},
		{Type: "RemoveLeadingSlash", To: []block.Connection{{Kind: block.ConnectionBlock, Index: 0}}},
	}

	_, err := pipeline.New(configs, false)
	assert.Error(t, err)
}

func TestCycleDetectionCanBeIgnored(t *testing.T) {
	configs := []block.Config{
		{Type: "AddLeadingSlash", To: []block.Connection{{Kind: block.ConnectionBlock, Index: 1}}},
		{Type: "RemoveLeadingSlash", To: []block.Connection{{Kind: block.ConnectionBlock, Index: 0}}},
	}

	p, err := pipeline.New(configs, true)
	assert.NoError(t, err)
	assert.NotNil(t, p)
}

func TestMatchTopicDropDoesNotReachSink(t *testing.T) {
	configs := []block.Config{
		{
			Type:   "MatchTopic",
			Config: []byte(`{"mode":"exact","pattern":"only/this"}`),
			To:     []block.Connection{{Kind: block.ConnectionSink, Index: 0}},
		},
	}

	p, err := pipeline.New(configs, false)
	assert.NoError(t, err)

	var collected []pipeline.Collected
	err = p.Handle(context.Background(), 0, message.Message{Topic: "other"}, &collected)
	assert.NoError(t, err)
	assert.Len(t, collected, 0)
}

func TestUnknownBlockIndexPanics(t *testing.T) {
	configs := []block.Config{{Type: "AddLeadingSlash"}}
	p, err := pipeline.New(configs, false)
	assert.NoError(t, err)

	var collected []pipeline.Collected
	assert.Panics(t, func() {
		_ = p.Handle(context.Background(), 5, message.Message{}, &collected)
	})
}
