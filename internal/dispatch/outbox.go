package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var bucketOutbox = []byte("outbox")

// CapturedMessage is a simulated send stored in the outbox.
type CapturedMessage struct {
	ID         string    `json:"id"`
	From       string    `json:"from"`
	To         []string  `json:"to"`
	Subject    string    `json:"subject"`
	Data       []byte    `json:"data"`
	CapturedAt time.Time `json:"captured_at"`
}

// Outbox stores simulated sends in a bolt bucket, keyed so that
// iteration order follows capture time.
type Outbox struct {
	db *bolt.DB
}

// OpenOutbox opens (or creates) the outbox database at path.
func OpenOutbox(path string) (*Outbox, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open outbox: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketOutbox)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create outbox bucket: %w", err)
	}

	return &Outbox{db: db}, nil
}

// Capture appends a message to the outbox.
func (o *Outbox) Capture(ctx context.Context, msg *CapturedMessage) error {
	return o.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketOutbox)

		data, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message: %w", err)
		}
		return bucket.Put(makeIndexKey(msg.CapturedAt, msg.ID), data)
	})
}

// List returns captured messages, newest first, up to limit
// (0 means no limit).
func (o *Outbox) List(ctx context.Context, limit int) ([]*CapturedMessage, error) {
	var messages []*CapturedMessage

	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOutbox).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var msg CapturedMessage
			if err := json.Unmarshal(v, &msg); err != nil {
				continue
			}
			messages = append(messages, &msg)
			if limit > 0 && len(messages) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Get returns the captured message with the given ID, nil when absent.
func (o *Outbox) Get(ctx context.Context, id string) (*CapturedMessage, error) {
	var found *CapturedMessage
	err := o.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOutbox).Cursor()
		suffix := []byte("-" + id)
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !bytes.HasSuffix(k, suffix) {
				continue
			}
			var msg CapturedMessage
			if err := json.Unmarshal(v, &msg); err != nil {
				return err
			}
			found = &msg
			return nil
		}
		return nil
	})
	return found, err
}

// Close closes the underlying database.
func (o *Outbox) Close() error {
	return o.db.Close()
}

func makeIndexKey(t time.Time, id string) []byte {
	return []byte(fmt.Sprintf("%020d-%s", t.UnixNano(), id))
}
