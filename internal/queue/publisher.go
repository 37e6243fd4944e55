package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "sync"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "go.uber.org/zap"
)

// channel is the subset of *amqp.Channel the publisher needs.
type channel interface {
    QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
    PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
    Close() error
}

type dialFunc func(url string) (channel, func() error, error)

func dialAMQP(url string) (channel, func() error, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, nil, err
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, nil, err
    }
    return ch, conn.Close, nil
}

// Publisher sends ReservationEvents to QueueName.  The connection is
// opened lazily and reopened after a failed publish.  Safe for concurrent
// use.
type Publisher struct {
    url  string
    log  *zap.Logger
    dial dialFunc

    mu        sync.Mutex
    ch        channel
    closeConn func() error
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string, log *zap.Logger) *Publisher {
    if log == nil {
        log = zap.NewNop()
    }
    return &Publisher{url: url, log: log, dial: dialAMQP}
}

// Publish marshals the event and publishes it as a persistent message.
// ID and OccurredAt are filled in when empty.  Errors are logged and
// returned; callers treat them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, ev ReservationEvent) error {
    if ev.ID == "" {
        ev.ID = uuid.NewString()
    }
    if ev.OccurredAt.IsZero() {
        ev.OccurredAt = time.Now().UTC()
    }
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    p.mu.Lock()
    defer p.mu.Unlock()
    ch, err := p.channelLocked()
    if err != nil {
        p.log.Warn("rabbitmq: connect failed", zap.Error(err))
        return err
    }
    msg := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Type:         ev.Type,
        Timestamp:    ev.OccurredAt,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", QueueName, false, false, msg); err != nil {
        p.log.Warn("rabbitmq: publish failed",
            zap.String("type", ev.Type), zap.Uint64("reservation_id", ev.ReservationID), zap.Error(err))
        p.resetLocked()
        return err
    }
    p.log.Debug("event published", zap.String("type", ev.Type), zap.Uint64("reservation_id", ev.ReservationID))
    return nil
}

func (p *Publisher) channelLocked() (channel, error) {
    if p.ch != nil {
        return p.ch, nil
    }
    ch, closeConn, err := p.dial(p.url)
    if err != nil {
        return nil, err
    }
    if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
        _ = ch.Close()
        if closeConn != nil {
            _ = closeConn()
        }
        return nil, fmt.Errorf("queue declare: %w", err)
    }
    p.ch, p.closeConn = ch, closeConn
    return ch, nil
}

func (p *Publisher) resetLocked() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.closeConn != nil {
        _ = p.closeConn()
    }
    p.ch, p.closeConn = nil, nil
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
    p.mu.Lock()
    defer p.mu.Unlock()
    if p.ch == nil {
        return nil
    }
    var errs []error
    if err := p.ch.Close(); err != nil {
        errs = append(errs, err)
    }
    if p.closeConn != nil {
        if err := p.closeConn(); err != nil {
            errs = append(errs, err)
        }
    }
    p.ch, p.closeConn = nil, nil
    return errors.Join(errs...)
}
