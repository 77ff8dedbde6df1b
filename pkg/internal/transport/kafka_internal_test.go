package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type fakeBroker struct {
	mu       sync.Mutex
	produced []kafka.Message
	ch       chan kafka.Message
	closed   int
}

func newFakeBroker() *fakeBroker { return &fakeBroker{ch: make(chan kafka.Message, 64)} }

func (b *fakeBroker) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	b.mu.Lock()
	b.produced = append(b.produced, msgs...)
	b.mu.Unlock()
	for _, m := range msgs {
		b.ch <- m
	}
	return nil
}

func (b *fakeBroker) ReadMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	case m := <-b.ch:
		return m, nil
	}
}

func (b *fakeBroker) Close() error {
	b.mu.Lock()
	b.closed++
	b.mu.Unlock()
	return nil
}

func TestKafkaLink_CoalescesWritesIntoKeyedMessages(t *testing.T) {
	broker := newFakeBroker()
	link := newKafkaLink(context.Background(), broker, broker, []byte("session-1"), time.Millisecond)

	want := []byte{}
	for i := 0; i < 16; i++ {
		chunk := []byte{byte(i), byte(i), byte(i), byte(i)}
		want = append(want, chunk...)
		if _, err := link.Write(chunk); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	got := make([]byte, len(want))
	if _, err := io.ReadFull(link, got); err != nil {
		t.Fatalf("ReadFull: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("stream mismatch\n got % x\nwant % x", got, want)
	}

	broker.mu.Lock()
	for _, m := range broker.produced {
		if string(m.Key) != "session-1" {
			t.Fatalf("message produced without the session key: %q", m.Key)
		}
	}
	broker.mu.Unlock()

	if err := link.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if broker.closed != 2 {
		t.Fatalf("expected writer and reader to be closed, got %d closes", broker.closed)
	}
	if _, err := link.Write([]byte{1}); err == nil {
		t.Fatalf("expected write after close to fail")
	}
	if _, err := link.Read(make([]byte, 1)); !errors.Is(err, net.ErrClosed) {
		t.Fatalf("expected net.ErrClosed reading after close, got %v", err)
	}
}

func TestKafkaLink_CloseFlushesPending(t *testing.T) {
	broker := newFakeBroker()
	link := newKafkaLink(context.Background(), broker, broker, nil, time.Hour)
	if _, err := link.Write([]byte("tail")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	_ = link.Close()

	broker.mu.Lock()
	defer broker.mu.Unlock()
	if len(broker.produced) != 1 || string(broker.produced[0].Value) != "tail" {
		t.Fatalf("expected the pending bytes to be flushed on close, got %+v", broker.produced)
	}
}
