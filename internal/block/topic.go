package block

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cast"

	"github.com/relaywire/relay/internal/message"
)

// AddLeadingSlash prefixes the topic with "/" unless it already has one.
type AddLeadingSlash struct{}

func (AddLeadingSlash) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	if !strings.HasPrefix(msg.Topic, "/") {
		msg.Topic = "/" + msg.Topic
	}
	return passthrough(msg)
}

// RemoveLeadingSlash strips every leading "/" from the topic.
type RemoveLeadingSlash struct{}

func (RemoveLeadingSlash) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	msg.Topic = strings.TrimLeft(msg.Topic, "/")
	return passthrough(msg)
}

// ReplaceTopic overwrites the topic with a fixed configured string.
type ReplaceTopic struct {
	Topic string
}

func newReplaceTopic(raw []byte) (Block, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("ReplaceTopic config: %w", err)
	}
	topic, err := cast.ToStringE(value)
	if err != nil {
		return nil, fmt.Errorf("ReplaceTopic config must be a string: %w", err)
	}
	return ReplaceTopic{Topic: topic}, nil
}

func (b ReplaceTopic) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	msg.Topic = b.Topic
	return passthrough(msg)
}

// matchTopicMode selects which predicate MatchTopic evaluates.
type matchTopicMode string

const (
	matchExact      matchTopicMode = "exact"
	matchStartsWith matchTopicMode = "starts_with"
	matchEndsWith   matchTopicMode = "ends_with"
	matchRegex      matchTopicMode = "regex"
)

// matchTopicConfig is the on-disk shape of a MatchTopic block's config:
// {"mode": "exact", "pattern": "a/b"}.
type matchTopicConfig struct {
	Mode    string `json:"mode"`
	Pattern string `json:"pattern"`
}

// MatchTopic drops the message unless the topic matches the configured
// predicate, letting it through unchanged otherwise.
type MatchTopic struct {
	mode    matchTopicMode
	pattern string
	regex   *regexp.Regexp
}

func newMatchTopic(raw []byte) (Block, error) {
	var cfg matchTopicConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("MatchTopic config: %w", err)
	}

	mode := matchTopicMode(cfg.Mode)
	switch mode {
	case matchExact, matchStartsWith, matchEndsWith, matchRegex:
	default:
		return nil, fmt.Errorf("MatchTopic config: unknown mode %q", cfg.Mode)
	}

	mt := MatchTopic{mode: mode, pattern: cfg.Pattern}
	if mode == matchRegex {
		re, err := regexp.Compile(cfg.Pattern)
		if err != nil {
			return nil, fmt.Errorf("MatchTopic regex %q: %w", cfg.Pattern, err)
		}
		mt.regex = re
	}
	return mt, nil
}

func (b MatchTopic) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	var matches bool
	switch b.mode {
	case matchExact:
		matches = msg.Topic == b.pattern
	case matchStartsWith:
		matches = strings.HasPrefix(msg.Topic, b.pattern)
	case matchEndsWith:
		matches = strings.HasSuffix(msg.Topic, b.pattern)
	case matchRegex:
		matches = b.regex.MatchString(msg.Topic)
	default:
		return nil, fmt.Errorf("MatchTopic: unknown mode %q", b.mode)
	}

	if !matches {
		return nil, nil
	}
	return passthrough(msg)
}
