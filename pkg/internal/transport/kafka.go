package transport

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/segmentio/kafka-go"
)

type producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type consumer interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// kafkaLink carries the byte stream over two topics. Writes are coalesced and
// produced every flush interval under one key so they stay on one partition
// and in order; reads concatenate consumed message values.
type kafkaLink struct {
	ctx    context.Context
	cancel context.CancelFunc
	w      producer
	r      consumer
	key    []byte
	every  time.Duration

	mu       sync.Mutex
	pending  []byte
	flushErr error

	rbuf      []byte
	done      chan struct{}
	closeOnce sync.Once
}

func openKafka(ctx context.Context, u *url.URL, opts Options) (types.Transport, error) {
	brokers := strings.Split(u.Host, ",")
	topics := strings.Split(strings.Trim(u.Path, "/"), "/")
	if u.Host == "" || len(topics) != 2 || topics[0] == "" || topics[1] == "" {
		return nil, types.InvalidConfig("kafka transport wants kafka://brokers/txTopic/rxTopic, got %q", u.String())
	}
	group := opts.KafkaGroupID
	if g := u.Query().Get("group"); g != "" {
		group = g
	}
	key := u.Query().Get("key")
	if key == "" {
		key = "sparsewave"
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topics[0],
		Balancer:               &kafka.Hash{},
		BatchTimeout:           opts.KafkaFlushInterval,
		BatchBytes:             int64(1 << 20),
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	rc := kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topics[1],
		GroupID:     group,
		StartOffset: kafka.LastOffset,
		MaxWait:     opts.KafkaFlushInterval,
		MaxBytes:    1_000_000,
	}
	if group != "" {
		rc.CommitInterval = time.Second
	}
	return newKafkaLink(ctx, w, kafka.NewReader(rc), []byte(key), opts.KafkaFlushInterval), nil
}

func newKafkaLink(ctx context.Context, w producer, r consumer, key []byte, every time.Duration) *kafkaLink {
	if every <= 0 {
		every = 10 * time.Millisecond
	}
	lctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	l := &kafkaLink{
		ctx:    lctx,
		cancel: cancel,
		w:      w,
		r:      r,
		key:    key,
		every:  every,
		done:   make(chan struct{}),
	}
	go l.flushLoop()
	return l
}

func (l *kafkaLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.flushErr != nil {
		return 0, l.flushErr
	}
	if l.ctx.Err() != nil {
		return 0, net.ErrClosed
	}
	l.pending = append(l.pending, p...)
	return len(p), nil
}

func (l *kafkaLink) Read(p []byte) (int, error) {
	for len(l.rbuf) == 0 {
		msg, err := l.r.ReadMessage(l.ctx)
		if err != nil {
			if l.ctx.Err() != nil {
				return 0, net.ErrClosed
			}
			return 0, fmt.Errorf("kafka read: %w", err)
		}
		l.rbuf = msg.Value
	}
	n := copy(p, l.rbuf)
	l.rbuf = l.rbuf[n:]
	return n, nil
}

// Close flushes buffered writes and closes both clients.
func (l *kafkaLink) Close() error {
	var err error
	l.closeOnce.Do(func() {
		l.cancel()
		<-l.done
		if werr := l.w.Close(); werr != nil {
			err = werr
		}
		if rerr := l.r.Close(); rerr != nil && err == nil {
			err = rerr
		}
	})
	return err
}

func (l *kafkaLink) flushLoop() {
	defer close(l.done)
	ticker := time.NewTicker(l.every)
	defer ticker.Stop()
	for {
		select {
		case <-l.ctx.Done():
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			l.flush(ctx)
			cancel()
			return
		case <-ticker.C:
			l.flush(l.ctx)
		}
	}
}

func (l *kafkaLink) flush(ctx context.Context) {
	l.mu.Lock()
	chunk := l.pending
	l.pending = nil
	l.mu.Unlock()
	if len(chunk) == 0 {
		return
	}
	if err := l.w.WriteMessages(ctx, kafka.Message{Key: l.key, Value: chunk}); err != nil {
		l.mu.Lock()
		if l.flushErr == nil {
			l.flushErr = fmt.Errorf("kafka write: %w", err)
		}
		l.mu.Unlock()
	}
}
