// Package mqtt connects the sensor bridge to its MQTT broker.
//
// Client wraps paho.mqtt.golang with:
//   - auto-reconnect with exponential backoff, restoring subscriptions
//   - a retained status topic (sensorbridge/status) with a Last Will so
//     consumers can tell a crash from a graceful shutdown
//   - handler panic recovery so one bad message cannot kill a paho goroutine
//
// Usage:
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	for _, topic := range svc.Subscriptions() {
//	    if err := client.Subscribe(topic, byte(cfg.MQTT.QoS), svc.Listener().Handle); err != nil {
//	        return err
//	    }
//	}
//
// Handlers run on paho's goroutines and must not block for long.
package mqtt
