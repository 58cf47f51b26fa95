package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Blobs reads raw objects from a blob storage.
type Blobs interface {
	Get(ctx context.Context, key string) ([]byte, error)
}

// Sender enqueues payloads for later loading.
type Sender interface {
	Send(ctx context.Context, payload string) error
}

// SendFunc adapts a function to the Sender interface.
type SendFunc func(ctx context.Context, payload string) error

// Send calls f(ctx, payload).
func (f SendFunc) Send(ctx context.Context, payload string) error { return f(ctx, payload) }

// Putter persists records.
type Putter interface {
	// Put stores r, replacing any record with the same party and datetime.
	Put(ctx context.Context, r Record) error
}

// Store is a Putter that can also be queried.
type Store interface {
	Putter
	Querier
}

// ChangeEvent is the structural representation of a stored record, as
// published to mirrors. It only holds JSON compatible values: strings,
// json.Number, maps and slices.
type ChangeEvent map[string]any

// NewChangeEvent returns the ChangeEvent of r.
func NewChangeEvent(r Record) (ChangeEvent, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var ev ChangeEvent
	if err := dec.Decode(&ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// Mirror receives a ChangeEvent for every stored record.
type Mirror interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// Importer reads files of lines from a blob storage and sends every line to a queue.
type Importer struct {
	Blobs Blobs
	Queue Sender
}

// Import sends each non blank line of the blob key to the queue, and returns
// the number of lines sent. It stops at the first error.
func (im *Importer) Import(ctx context.Context, key string) (int, error) {
	data, err := im.Blobs.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("reading %q: %w", key, err)
	}
	sent := 0
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := im.Queue.Send(ctx, line); err != nil {
			return sent, fmt.Errorf("sending line %d of %q: %w", i+1, key, err)
		}
		sent++
	}
	return sent, nil
}

// Loader decodes queued lines and stores them.
type Loader struct {
	Decoder Decoder
	Store   Putter
	Mirror  Mirror // Mirror is optional.
}

// Load decodes payload, stores the record and publishes it to the mirror.
func (l *Loader) Load(ctx context.Context, payload string) (Record, error) {
	r, err := l.Decoder.Decode(payload)
	if err != nil {
		return Record{}, err
	}
	if err := l.Store.Put(ctx, r); err != nil {
		return r, fmt.Errorf("storing %s/%s: %w", r.Party, r.Datetime, err)
	}
	if l.Mirror == nil {
		return r, nil
	}
	ev, err := NewChangeEvent(r)
	if err != nil {
		return r, err
	}
	if err := l.Mirror.Publish(ctx, ev); err != nil {
		return r, fmt.Errorf("mirroring %s/%s: %w", r.Party, r.Datetime, err)
	}
	return r, nil
}

// Sender returns a Sender that loads payloads immediately, without a queue.
func (l *Loader) Sender() Sender {
	return SendFunc(func(ctx context.Context, payload string) error {
		_, err := l.Load(ctx, payload)
		return err
	})
}
