package main

import (
	"context"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/segmentio/kafka-go"
)

// scriptedReader returns msgs in order, then cancels the loop's context.
type scriptedReader struct {
	msgs      []kafka.Message
	errs      []error
	committed []int64
	cancel    context.CancelFunc
}

func (r *scriptedReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}
	if len(r.msgs) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *scriptedReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type recordingPusher struct {
	lines []string
	fail  map[string]bool
}

func (p *recordingPusher) PushEventJSON(ctx context.Context, raw []byte) error {
	p.lines = append(p.lines, string(raw))
	if p.fail[string(raw)] {
		return errors.New("loki unavailable")
	}
	return nil
}

func TestConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := &scriptedReader{
		errs: []error{errors.New("rebalance in progress")},
		msgs: []kafka.Message{
			{Offset: 1, Value: []byte(`{"type":"login"}`)},
			{Offset: 2, Value: []byte(`{"type":"revoke"}`)},
		},
		cancel: cancel,
	}
	p := &recordingPusher{fail: map[string]bool{`{"type":"login"}`: true}}

	consume(ctx, r, p, hclog.NewNullLogger())

	if len(p.lines) != 2 {
		t.Fatalf("pushed %d events, want 2", len(p.lines))
	}
	if len(r.committed) != 2 || r.committed[0] != 1 || r.committed[1] != 2 {
		t.Errorf("committed = %v, want [1 2]", r.committed)
	}
}
