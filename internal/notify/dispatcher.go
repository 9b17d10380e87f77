package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sender delivers a single event to the notification collaborator.
type Sender interface {
	Send(ctx context.Context, ev Event) error
}

// SenderFunc is a function adapter for Sender.
type SenderFunc func(context.Context, Event) error

func (f SenderFunc) Send(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// Config holds dispatcher configuration.
type Config struct {
	BufferSize  int           // Initial queue capacity (default: 1024)
	SendTimeout time.Duration // Per-delivery timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:  1024,
		SendTimeout: 10 * time.Second,
	}
}

// Stats holds dispatcher counters.
type Stats struct {
	Enqueued  int64
	Delivered int64
	Failed    int64
	Dropped   int64
}

// Dispatcher queues events and delivers them on a background goroutine.
// It implements Notifier.
type Dispatcher struct {
	cfg    Config
	sender Sender
	logger *slog.Logger

	queue *queue

	statsMu sync.Mutex
	stats   Stats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher delivering through sender.
func NewDispatcher(cfg Config, sender Sender, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = DefaultConfig().SendTimeout
	}
	return &Dispatcher{
		cfg:    cfg,
		sender: sender,
		logger: logger,
		queue:  newQueue(cfg.BufferSize),
	}
}

// Start begins the delivery loop.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.ctx, d.cancel = context.WithCancel(context.WithoutCancel(ctx))

	d.wg.Add(1)
	go d.deliverLoop()

	d.logger.Info("notification dispatcher started",
		"buffer_size", d.cfg.BufferSize,
		"send_timeout", d.cfg.SendTimeout,
	)
	return nil
}

// Stop closes the queue, drains queued events, and waits for the delivery
// goroutine to finish or ctx to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.queue.close()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("notification dispatcher stopped")
	case <-ctx.Done():
		if d.cancel != nil {
			d.cancel()
		}
		d.logger.Warn("notification dispatcher stop timed out", "undelivered", d.queue.len())
	}
	return nil
}

// Stats returns current counters.
func (d *Dispatcher) Stats() Stats {
	d.statsMu.Lock()
	defer d.statsMu.Unlock()
	return d.stats
}

// deliverLoop drains the queue until it is closed and empty.
func (d *Dispatcher) deliverLoop() {
	defer d.wg.Done()

	for {
		ev, ok := d.queue.pop()
		if !ok {
			return
		}
		d.deliver(ev)
	}
}

// deliver sends one event. Failures are logged and counted, nothing more.
func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.SendTimeout)
	defer cancel()

	if err := d.sender.Send(ctx, ev); err != nil {
		d.logger.Warn("notification delivery failed",
			"kind", ev.Kind,
			"recipient", ev.Recipient,
			"auction_id", ev.AuctionID,
			"err", err,
		)
		d.statsMu.Lock()
		d.stats.Failed++
		d.statsMu.Unlock()
		return
	}

	d.statsMu.Lock()
	d.stats.Delivered++
	d.statsMu.Unlock()
}

// enqueue queues one event without blocking.
func (d *Dispatcher) enqueue(ev Event) {
	ev.OccurredAt = time.Now().UTC()

	if !d.queue.push(ev) {
		d.logger.Warn("notification dropped, dispatcher stopped",
			"kind", ev.Kind,
			"recipient", ev.Recipient,
			"auction_id", ev.AuctionID,
		)
		d.statsMu.Lock()
		d.stats.Dropped++
		d.statsMu.Unlock()
		return
	}

	d.statsMu.Lock()
	d.stats.Enqueued++
	d.statsMu.Unlock()
}

// -----------------------------------------------------------------------------
// Notifier implementation
// -----------------------------------------------------------------------------

func (d *Dispatcher) BidConfirmed(bidderID, auctionID uuid.UUID, amount decimal.Decimal) {
	d.enqueue(Event{Kind: KindBidConfirmed, Recipient: bidderID, AuctionID: auctionID, Amount: amount})
}

func (d *Dispatcher) NewBid(sellerID, auctionID uuid.UUID, amount decimal.Decimal, bidderID uuid.UUID) {
	d.enqueue(Event{
		Kind:         KindNewBid,
		Recipient:    sellerID,
		AuctionID:    auctionID,
		Amount:       amount,
		Counterparty: uuid.NullUUID{UUID: bidderID, Valid: true},
	})
}

func (d *Dispatcher) Outbid(previousLeaderID, auctionID uuid.UUID, amount decimal.Decimal) {
	d.enqueue(Event{Kind: KindOutbid, Recipient: previousLeaderID, AuctionID: auctionID, Amount: amount})
}

func (d *Dispatcher) Excluded(bidderID, auctionID uuid.UUID) {
	d.enqueue(Event{Kind: KindExcluded, Recipient: bidderID, AuctionID: auctionID})
}

func (d *Dispatcher) AuctionWon(winnerID, auctionID uuid.UUID, price decimal.Decimal) {
	d.enqueue(Event{Kind: KindAuctionWon, Recipient: winnerID, AuctionID: auctionID, Amount: price})
}

func (d *Dispatcher) AuctionSold(sellerID, auctionID uuid.UUID, price decimal.Decimal, winnerID uuid.UUID) {
	d.enqueue(Event{
		Kind:         KindAuctionSold,
		Recipient:    sellerID,
		AuctionID:    auctionID,
		Amount:       price,
		Counterparty: uuid.NullUUID{UUID: winnerID, Valid: true},
	})
}

func (d *Dispatcher) NoBids(sellerID, auctionID uuid.UUID) {
	d.enqueue(Event{Kind: KindNoBids, Recipient: sellerID, AuctionID: auctionID})
}

// LogSender logs every event instead of delivering it. Stand-in for the
// real notification collaborator.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, ev Event) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification",
		"kind", ev.Kind,
		"recipient", ev.Recipient,
		"auction_id", ev.AuctionID,
		"amount", ev.Amount,
	)
	return nil
}
