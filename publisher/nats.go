package publisher

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// BoardPublisher pushes freshly resolved arrival boards to NATS, one
// subject per stop.
type BoardPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics PublisherMetrics
}

// PublisherMetrics is the instrumentation surface for publishing; nil
// disables reporting.
type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	NATSSetConnected(connected bool)
}

// NewBoardPublisher connects to NATS at url. prefix is prepended to every
// subject.
func NewBoardPublisher(url, prefix string, m PublisherMetrics) (*BoardPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("arrivals-board"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats at %s: %w", url, err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return &BoardPublisher{nc: nc, prefix: prefix, metrics: m}, nil
}

func (p *BoardPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// BoardMessage is the wire shape of one published stop board.
type BoardMessage struct {
	StopID    string    `json:"stopId"`
	Timestamp time.Time `json:"timestamp"`
	Arrivals  []string  `json:"arrivals"`
}

// PublishBoard sends the board for one stop on "<prefix>.<stop>".
func (p *BoardPublisher) PublishBoard(stopID string, arrivals []string) error {
	subject := fmt.Sprintf("%s.%s", p.prefix, subjectToken(stopID))
	msg := BoardMessage{StopID: stopID, Timestamp: time.Now().UTC(), Arrivals: arrivals}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
