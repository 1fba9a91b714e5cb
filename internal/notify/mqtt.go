package notify

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

const mqttTimeout = 5 * time.Second

// MQTTTarget describes where summaries are published.
type MQTTTarget struct {
	Broker   string
	ClientID string
	Topic    string
	Username string
	Password string
	QoS      byte
	Retain   bool
}

// PublishMQTT connects to the broker, publishes s to the target topic and
// disconnects. Each call uses a fresh connection.
func PublishMQTT(t MQTTTarget, s Summary) error {
	payload, err := s.Encode()
	if err != nil {
		return fmt.Errorf("mqtt: encode: %w", err)
	}

	clientID := t.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("mkicns-%d", time.Now().UnixNano())
	}
	opts := pahomqtt.NewClientOptions().
		AddBroker(t.Broker).
		SetClientID(clientID).
		SetConnectTimeout(mqttTimeout)
	if t.Username != "" {
		opts.SetUsername(t.Username)
	}
	if t.Password != "" {
		opts.SetPassword(t.Password)
	}

	client := pahomqtt.NewClient(opts)
	tok := client.Connect()
	if !tok.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("mqtt: connect timeout")
	}
	if tok.Error() != nil {
		return fmt.Errorf("mqtt: connect: %w", tok.Error())
	}
	defer client.Disconnect(250)

	pub := client.Publish(t.Topic, t.QoS, t.Retain, payload)
	if !pub.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("mqtt: publish timeout")
	}
	if pub.Error() != nil {
		return fmt.Errorf("mqtt: publish: %w", pub.Error())
	}
	return nil
}
