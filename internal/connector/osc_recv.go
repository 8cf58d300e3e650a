package connector

import (
	"context"
	"fmt"
	"net"

	"github.com/hypebeast/go-osc/osc"
	"github.com/yaoapp/kun/log"

	"github.com/relaywire/relay/internal/lifecycle"
	"github.com/relaywire/relay/internal/message"
)

type oscRecvConfig struct {
	Interface string `json:"interface"`
	Port      int    `json:"port"`
}

// maxDatagramSize is the largest UDP payload over IPv4, so any single
// datagram fits in one read.
const maxDatagramSize = 65507

func makeOSCRecv(ctx context.Context, idx int, sourceTx SourceTx, events chan<- lifecycle.Event, cfg Config) (*Handle, error) {
	var rc oscRecvConfig
	if err := json.Unmarshal(cfg.Config, &rc); err != nil {
		return nil, fmt.Errorf("connector %d: OSCRecv config: %w", idx, err)
	}

	addr := fmt.Sprintf("%s:%d", rc.Interface, rc.Port)
	udpAddr, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("connector %d: OSCRecv resolve %q: %w", idx, addr, err)
	}

	conn, err := net.ListenUDP("udp4", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("connector %d: OSCRecv bind %q: %w", idx, addr, err)
	}

	go func() {
		events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Ready}

		buf := make([]byte, maxDatagramSize)
		go func() {
			<-ctx.Done()
			conn.Close()
		}()

		for {
			n, _, err := conn.ReadFromUDP(buf)
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Exited, Err: err}
				return
			}

			packet, err := osc.ParsePacket(string(buf[:n]))
			if err != nil {
				log.Warn("[OSCRecv %d] dropping unparseable packet: %v", idx, err)
				continue
			}

			messages, err := collectMessagesFromPacket(idx, packet)
			if err != nil {
				log.Warn("[OSCRecv %d] dropping packet with unsupported argument: %v", idx, err)
				continue
			}

			for _, m := range messages {
				sourceTx <- m
			}
		}
	}()

	// OSCRecv is a pure source: it never accepts egress traffic, but still
	// carries a sink channel for shape-uniformity with every other connector.
	return &Handle{To: cfg.To, SinkTx: make(chan message.Message, sinkBuffer)}, nil
}
