package block

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cast"

	"github.com/relaywire/relay/internal/message"
)

// Wait delays passing the message through by a fixed number of milliseconds.
// It honors context cancellation so a shutdown doesn't hang on a pending
// delay.
type Wait struct {
	Delay time.Duration
}

func newWait(raw []byte) (Block, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf("Wait config: %w", err)
	}
	millis, err := cast.ToUint64E(value)
	if err != nil {
		return nil, fmt.Errorf("Wait config must be a number of milliseconds: %w", err)
	}
	return Wait{Delay: time.Duration(millis) * time.Millisecond}, nil
}

func (b Wait) Exec(ctx context.Context, msg message.Message) ([]message.Message, error) {
	timer := time.NewTimer(b.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return passthrough(msg)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
