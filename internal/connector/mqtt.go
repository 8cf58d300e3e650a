package connector

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/yaoapp/kun/log"

	"github.com/relaywire/relay/internal/lifecycle"
	"github.com/relaywire/relay/internal/message"
)

// mqttConfig mirrors the bus's MQTT adapter configuration: client_id
// defaults to "relay" when omitted, and an omitted topic list subscribes
// to everything ("#") when this connector is actually wired as a source.
type mqttConfig struct {
	ClientID string   `json:"client_id"`
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Topics   []string `json:"topics"`
}

func makeMQTT(ctx context.Context, idx int, sourceTx SourceTx, events chan<- lifecycle.Event, cfg Config) (*Handle, error) {
	var mc mqttConfig
	if err := json.Unmarshal(cfg.Config, &mc); err != nil {
		return nil, fmt.Errorf("connector %d: MQTT config: %w", idx, err)
	}

	clientID := mc.ClientID
	if clientID == "" {
		clientID = "relay"
	}

	isSource := len(cfg.To) > 0

	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", mc.Host, mc.Port))
	opts.SetClientID(clientID)
	opts.SetKeepAlive(5 * time.Second)
	opts.SetAutoReconnect(true)

	opts.OnConnect = func(client mqtt.Client) {
		subscribeMQTTTopics(client, idx, sourceTx, mc.Topics, isSource)
		events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Ready}
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Disconnected, Err: err}
	}

	client := mqtt.NewClient(opts)

	sinkTx := make(chan message.Message, sinkBuffer)

	go func() {
		token := client.Connect()
		if token.Wait() && token.Error() != nil {
			events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Exited, Err: token.Error()}
			return
		}

		<-ctx.Done()
		client.Disconnect(250)
	}()

	go func() {
		for {
			select {
			case msg, ok := <-sinkTx:
				if !ok {
					return
				}
				payload, err := msg.Data.GetBinary()
				if err != nil {
					log.Error("[MQTT %d] can't encode message body for publish: %v", idx, err)
					continue
				}
				token := client.Publish(msg.Topic, 1, false, payload)
				if token.Wait() && token.Error() != nil {
					events <- lifecycle.Event{ConnectorIdx: idx, Kind: lifecycle.Failed, Err: token.Error()}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return &Handle{To: cfg.To, SinkTx: sinkTx}, nil
}

func subscribeMQTTTopics(client mqtt.Client, idx int, sourceTx SourceTx, topics []string, isSource bool) {
	if !isSource {
		log.Info("[MQTT %d] skipping subscribe, this connector has no outgoing connections", idx)
		return
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		sourceTx <- message.Message{
			SourceConnector: idx,
			Topic:           msg.Topic(),
			Data:            message.Binary(msg.Payload()),
		}
	}

	if len(topics) == 0 {
		client.Subscribe("#", 2, handler)
		return
	}

	for _, topic := range topics {
		client.Subscribe(topic, 2, handler)
	}
}
