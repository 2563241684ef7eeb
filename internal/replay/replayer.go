// Package replay feeds a sequenced event stream into one engine and records
// what happened: fills, per-tick snapshots and counters.
package replay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"backtest_go/internal/domain"
	"backtest_go/internal/engine"
	"backtest_go/internal/event"
	"backtest_go/internal/infra"
	"backtest_go/pkg/quant"
)

// GapError reports an event whose sequence number is not the next expected one.
type GapError struct {
	Expected uint64
	Got      uint64
}

func (e *GapError) Error() string {
	return fmt.Sprintf("sequence gap: expected %d, got %d", e.Expected, e.Got)
}

// Option configures a Replayer.
type Option func(*Replayer)

// WithMetrics sends counters to m instead of a private Metrics.
func WithMetrics(m *infra.Metrics) Option {
	return func(r *Replayer) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithLogger sets the logger used for rejections and gaps.
func WithLogger(l *slog.Logger) Option {
	return func(r *Replayer) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithHistory turns per-tick snapshot recording on or off. capacity preallocates
// the history buffer; 0 lets it grow.
func WithHistory(record bool, capacity int) Option {
	return func(r *Replayer) {
		r.record = record
		if capacity > 0 {
			r.history = make([]domain.Snapshot, 0, capacity)
		}
	}
}

// Replayer is the single-threaded event processor in front of an engine.
// Not safe for concurrent use.
type Replayer struct {
	eng     *engine.Engine
	metrics *infra.Metrics
	logger  *slog.Logger

	nextSeq uint64
	lastTs  quant.TimeStamp

	record  bool
	history []domain.Snapshot
	fills   []domain.Fill
}

// New creates an engine from cfg and a replayer in front of it.
func New(cfg *domain.Config, opts ...Option) (*Replayer, error) {
	r := &Replayer{
		metrics: &infra.Metrics{},
		logger:  slog.Default(),
		nextSeq: 1,
		record:  true,
	}
	for _, opt := range opts {
		opt(r)
	}

	eng, err := engine.New(cfg, engine.WithFillHandler(r.onFill))
	if err != nil {
		return nil, err
	}
	r.eng = eng
	return r, nil
}

func (r *Replayer) onFill(f domain.Fill) {
	r.fills = append(r.fills, f)
	r.metrics.RecordOrderFilled()
}

// Engine returns the underlying engine for reads.
func (r *Replayer) Engine() *engine.Engine { return r.eng }

// NextSeq returns the sequence number Apply expects next.
func (r *Replayer) NextSeq() uint64 { return r.nextSeq }

// Apply processes one event. A sequence gap or a timestamp going backwards is
// returned without touching any state. Engine rejections are returned wrapped
// but still consume the sequence number.
func (r *Replayer) Apply(ev event.Event) error {
	if ev == nil {
		return fmt.Errorf("apply: nil event: %w", domain.ErrInvalidArgument)
	}

	// 1. Sequence Gap Check
	if ev.GetSeq() != r.nextSeq {
		gap := &GapError{Expected: r.nextSeq, Got: ev.GetSeq()}
		r.logger.Error("SEQUENCE_GAP_DETECTED", slog.Uint64("expected", gap.Expected), slog.Uint64("got", gap.Got))
		return gap
	}

	// 2. Time Order Check
	if ev.GetTs() < r.lastTs {
		return fmt.Errorf("seq %d: ts %d before %d: %w", ev.GetSeq(), ev.GetTs(), r.lastTs, domain.ErrOutOfOrder)
	}

	// 3. Logic Dispatch
	err := r.dispatch(ev)

	// 4. Increment Sequence
	r.nextSeq++
	r.lastTs = ev.GetTs()

	if err != nil {
		r.metrics.RecordRejection()
		r.logger.Warn("event rejected",
			slog.Uint64("seq", ev.GetSeq()),
			slog.String("type", ev.GetType().String()),
			slog.Any("error", err),
		)
		return fmt.Errorf("seq %d: %w", ev.GetSeq(), err)
	}
	return nil
}

func (r *Replayer) dispatch(ev event.Event) error {
	switch e := ev.(type) {
	case *event.TickEvent:
		t := e.Tick()
		return r.step(&t)
	case *event.PlaceOrderEvent:
		if err := r.eng.PlaceOrder(&e.Order); err != nil {
			return err
		}
		r.metrics.RecordOrderPlaced()
		return nil
	case *event.CancelOrderEvent:
		if err := r.eng.CancelOrder(e.OrderID); err != nil {
			return err
		}
		r.metrics.RecordOrderCanceled()
		return nil
	default:
		return fmt.Errorf("unknown event type %s: %w", ev.GetType(), domain.ErrInvalidArgument)
	}
}

func (r *Replayer) step(t *domain.TickEvent) error {
	start := time.Now()
	if err := r.eng.StepTick(t); err != nil {
		return err
	}
	r.metrics.RecordTick(time.Since(start).Nanoseconds())

	if r.record {
		r.history = append(r.history, r.eng.Snapshot())
	}
	return nil
}

// StepBatch steps len(ts) unsequenced ticks in order. All slices must have the
// same length; otherwise ErrLengthMismatch is returned before any tick runs.
// The first failing tick stops the batch and its index is reported.
func (r *Replayer) StepBatch(ts []quant.TimeStamp, prices []quant.PriceTicks, qtys []quant.Qty, sides []domain.Side) error {
	n := len(ts)
	if len(prices) != n || len(qtys) != n || len(sides) != n {
		return fmt.Errorf("batch of %d ts, %d prices, %d qtys, %d sides: %w",
			n, len(prices), len(qtys), len(sides), domain.ErrLengthMismatch)
	}

	for i := 0; i < n; i++ {
		if ts[i] < r.lastTs {
			return fmt.Errorf("batch index %d: ts %d before %d: %w", i, ts[i], r.lastTs, domain.ErrOutOfOrder)
		}
		t := domain.TickEvent{Ts: ts[i], PriceTicks: prices[i], Qty: qtys[i], Side: sides[i]}
		if err := r.step(&t); err != nil {
			return fmt.Errorf("batch index %d: %w", i, err)
		}
		r.lastTs = ts[i]
	}
	return nil
}

// Run applies events in order until one fails fatally (a gap or a timestamp
// going backwards) or ctx is cancelled. Engine rejections are logged and skipped.
func (r *Replayer) Run(ctx context.Context, events []event.Event) error {
	for _, ev := range events {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.Apply(ev); err != nil && IsFatal(err) {
			return err
		}
	}
	return nil
}

// IsFatal reports whether err means the stream itself is broken, as opposed
// to a single rejected order.
func IsFatal(err error) bool {
	var gap *GapError
	return errors.As(err, &gap) || errors.Is(err, domain.ErrOutOfOrder) || errors.Is(err, context.Canceled)
}

// History returns a copy of the per-tick snapshots.
func (r *Replayer) History() []domain.Snapshot {
	out := make([]domain.Snapshot, len(r.history))
	copy(out, r.history)
	return out
}

// Fills returns a copy of all fills in execution order.
func (r *Replayer) Fills() []domain.Fill {
	out := make([]domain.Fill, len(r.fills))
	copy(out, r.fills)
	return out
}

// Reset restores the engine to its initial state, clears history and fills
// and rewinds the sequence to 1. Metrics are left to their owner.
func (r *Replayer) Reset() {
	r.eng.Reset()
	r.history = r.history[:0]
	r.fills = r.fills[:0]
	r.nextSeq = 1
	r.lastTs = 0
}

// DumpState writes the replay position, account and open orders to filename
// as JSON (for post-mortem).
func (r *Replayer) DumpState(filename string) error {
	r.logger.Info("Dumping replay state...", slog.String("file", filename))

	data := struct {
		NextSeq    uint64          `json:"next_seq"`
		LastTs     quant.TimeStamp `json:"last_ts"`
		Snapshot   domain.Snapshot `json:"snapshot"`
		OpenOrders []uint64        `json:"open_orders"`
		Fills      int             `json:"fills"`
	}{
		NextSeq:    r.nextSeq,
		LastTs:     r.lastTs,
		Snapshot:   r.eng.Snapshot(),
		OpenOrders: r.eng.OpenOrderIDs(),
		Fills:      len(r.fills),
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		return fmt.Errorf("write state dump: %w", err)
	}
	return nil
}
