package connector

import (
	"context"
	"fmt"

	"github.com/hypebeast/go-osc/osc"
	"github.com/yaoapp/kun/log"

	"github.com/relaywire/relay/internal/lifecycle"
	"github.com/relaywire/relay/internal/message"
)

type oscSendConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func makeOSCSend(ctx context.Context, idx int, events chan<- lifecycle.Event, cfg Config) (*Handle, error) {
	var sc oscSendConfig
	if err := json.Unmarshal(cfg.Config, &sc); err != nil {
		return nil, fmt.Errorf("connector %d: OSCSend config: %w", idx, err)
	}

	client := osc.NewClient(sc.Host, sc.Port)
	sinkTx := make(chan message.Message, sinkBuffer)

	go func() {
		events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Ready}

		for {
			select {
			case msg, ok := <-sinkTx:
				if !ok {
					return
				}
				args, err := msg.Data.GetOSC()
				if err != nil {
					log.Error("[OSCSend %d] can't encode message body as OSC: %v", idx, err)
					continue
				}
				oscMsg, err := argsToOSCMessage(msg.Topic, args)
				if err != nil {
					log.Error("[OSCSend %d] can't build OSC message: %v", idx, err)
					continue
				}
				if err := client.Send(oscMsg); err != nil {
					log.Error("[OSCSend %d] send failed: %v", idx, err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Handle{To: nil, SinkTx: sinkTx}, nil
}
