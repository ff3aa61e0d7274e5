// Package mqtt provides the MQTT connection used by the mqtt GELF transport.
//
// This package manages:
//   - Connecting to a broker (tcp:// or ssl://) with optional credentials
//   - Publishing one message with a QoS acknowledgement timeout
//   - Topic naming for GELF payloads
//   - Graceful disconnect
//
// # Architecture
//
// The GELF transport opens a connection per payload, publishes, and closes.
// Auto-reconnect and persistent sessions are therefore disabled: a failed
// connection is reported to the caller, which logs it and moves on.
//
//	transport.MQTTClient → mqtt.Connect → Publish → Close
//
// A bridge on the broker side (for example a Graylog MQTT input plugin or a
// small forwarder) consumes the topic.
//
// # Security Considerations
//
//   - Use TLS (Config.TLS=true) whenever the broker is not on localhost
//   - Credentials come from config or GRAYLOGGING_MQTT_* environment variables
//
// # Usage
//
//	client, err := mqtt.Connect(mqtt.Config{Host: "broker", Port: 1883, ClientID: "gelf-1"})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Publish(mqtt.Topics{}.GELF("graylog/gelf", "web-01"), payload, 1, false)
package mqtt
