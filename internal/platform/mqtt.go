package platform

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/hollis/wakeword/internal/alarm"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second

	// ringBuffer bounds the ring event channel so a slow consumer never
	// blocks the paho message callback.
	ringBuffer = 8
)

// Client talks to the platform alarm service over MQTT.
type Client struct {
	client paho.Client
	prefix string
	rings  chan alarm.RingEvent
	log    zerolog.Logger
}

// Dial connects to the broker and subscribes to the ringing topic. The
// prefix namespaces the schedule/stop/ringing topics.
func Dial(broker, clientID, prefix string, logger zerolog.Logger) (*Client, error) {
	c := &Client{
		prefix: prefix,
		rings:  make(chan alarm.RingEvent, ringBuffer),
		log:    logger,
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(pc paho.Client) {
			// (Re)subscribe on every connect so the stream survives
			// broker reconnects.
			topic := c.prefix + "/" + TopicRinging
			token := pc.Subscribe(topic, 1, c.onRingMessage)
			if token.WaitTimeout(publishTimeout) && token.Error() != nil {
				c.log.Error().Err(token.Error()).Str("topic", topic).Msg("subscribe failed")
			}
		})

	c.client = paho.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}
	return c, nil
}

// Schedule publishes a schedule request. The service replaces any alarm
// already scheduled under the same id.
func (c *Client) Schedule(ctx context.Context, req alarm.ScheduleRequest) error {
	payload, err := FormatSchedule(req)
	if err != nil {
		return fmt.Errorf("format schedule: %w", err)
	}
	return c.publish(ctx, c.prefix+"/"+TopicSchedule, payload)
}

// Stop publishes a stop request. The service treats unknown ids as a no-op.
func (c *Client) Stop(ctx context.Context, id string) error {
	payload, err := FormatStop(id)
	if err != nil {
		return fmt.Errorf("format stop: %w", err)
	}
	return c.publish(ctx, c.prefix+"/"+TopicStop, payload)
}

// Rings returns the ringing-event stream. The channel is owned by the
// client and closed by Close.
func (c *Client) Rings() <-chan alarm.RingEvent {
	return c.rings
}

// IsConnected reports whether the broker connection is up.
func (c *Client) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close disconnects from the broker and closes the ring stream.
func (c *Client) Close() error {
	c.client.Disconnect(1000) // 1 second timeout
	close(c.rings)
	return nil
}

func (c *Client) publish(ctx context.Context, topic string, payload []byte) error {
	// QoS 1 (at-least-once): schedule and stop requests must reach the
	// service, and it deduplicates by slot id.
	token := c.client.Publish(topic, 1, false, payload)

	done := make(chan bool, 1)
	go func() { done <- token.WaitTimeout(publishTimeout) }()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case completed := <-done:
		if !completed {
			return fmt.Errorf("publish timeout on %s", topic)
		}
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (c *Client) onRingMessage(_ paho.Client, msg paho.Message) {
	ev, err := ParseRing(msg.Payload())
	if err != nil {
		c.log.Warn().Err(err).Msg("dropping malformed ring frame")
		return
	}
	select {
	case c.rings <- ev:
	default:
		// Never block the paho callback goroutine.
		c.log.Warn().Int("batch", len(ev.Alarms)).Msg("ring stream full, dropping event")
	}
}
