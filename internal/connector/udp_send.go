package connector

import (
	"context"
	"fmt"
	"net"

	"github.com/relaywire/relay/internal/lifecycle"
	"github.com/relaywire/relay/internal/message"
)

type udpSendConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// makeUDPSend starts the bare UDP sender. It sends only the message's
// topic as the UDP payload, never the body — preserved from the upstream
// implementation unchanged, since the spec calls for preserving existing
// quirks rather than silently "fixing" them.
func makeUDPSend(ctx context.Context, idx int, events chan<- lifecycle.Event, cfg Config) (*Handle, error) {
	var uc udpSendConfig
	if err := json.Unmarshal(cfg.Config, &uc); err != nil {
		return nil, fmt.Errorf("connector %d: UDPSend config: %w", idx, err)
	}

	toAddr, err := net.ResolveUDPAddr("udp4", fmt.Sprintf("%s:%d", uc.Host, uc.Port))
	if err != nil {
		return nil, fmt.Errorf("connector %d: UDPSend resolve target: %w", idx, err)
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, fmt.Errorf("connector %d: UDPSend bind local socket: %w", idx, err)
	}

	sinkTx := make(chan message.Message, sinkBuffer)

	go func() {
		events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Ready}
		defer conn.Close()

		for {
			select {
			case msg, ok := <-sinkTx:
				if !ok {
					return
				}
				if _, err := conn.WriteToUDP([]byte(msg.Topic), toAddr); err != nil {
					events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Failed, Err: err}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Handle{To: nil, SinkTx: sinkTx}, nil
}
