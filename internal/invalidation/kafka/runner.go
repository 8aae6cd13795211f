package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/IBM/sarama"

	"github.com/geoconsole/spatial-canvas/internal/observability"
)

// Runner consumes the feature-update topic as a consumer group member
// and feeds events to the Handler.
type Runner struct {
	log *slog.Logger
	cfg InvalidationConfig
	h   *Handler

	group    sarama.ConsumerGroup
	running  atomic.Bool
	assigned atomic.Bool
	assignMu sync.RWMutex
	assign   map[int32]struct{}
	wg       sync.WaitGroup
	cancel   context.CancelFunc
}

func NewRunner(cfg InvalidationConfig, h *Handler, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		log:    log,
		cfg:    cfg,
		h:      h,
		assign: map[int32]struct{}{},
	}
}

func (r *Runner) Start(ctx context.Context) error {
	if r.cfg.Driver != DriverKafka || !r.cfg.Enabled {
		r.log.Info("invalidation runner disabled", "driver", r.cfg.Driver, "enabled", r.cfg.Enabled)
		return nil
	}
	if r.h == nil {
		return errors.New("kafka runner: handler dependency is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Group.Session.Timeout = r.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = r.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = r.cfg.RebalanceTimeout
	if r.cfg.InitialOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(r.cfg.Brokers, r.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("consumer group: %w", err)
	}
	r.group = group
	r.running.Store(true)

	h := &groupHandler{
		setup: func(sess sarama.ConsumerGroupSession) {
			claims := sess.Claims()
			r.assignMu.Lock()
			r.assigned.Store(true)
			r.assign = map[int32]struct{}{}
			for _, parts := range claims {
				for _, p := range parts {
					r.assign[p] = struct{}{}
				}
			}
			r.assignMu.Unlock()
			r.log.Info("partitions assigned", "claims", fmt.Sprint(claims))
		},
		cleanup: func() {
			r.assigned.Store(false)
		},
		process: r.process,
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			if err := group.Consume(ctx, []string{r.cfg.Topic}, h); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) || ctx.Err() != nil {
					return
				}
				r.log.Error("consume loop error", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for err := range group.Errors() {
			r.log.Warn("consumer group error", "err", err)
		}
	}()

	return nil
}

func (r *Runner) process(ctx context.Context, msg *sarama.ConsumerMessage) {
	ev, err := r.h.Decode(msg.Value)
	if err != nil {
		observability.IncInvalidation("decode", err)
		r.log.Warn("bad event skipped", "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return
	}
	err = r.h.Apply(ctx, ev)
	observability.IncInvalidation(ev.Op, err)
	if err != nil {
		r.log.Warn("event apply failed", "op", ev.Op, "err", err)
	}
}

func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	if r.group != nil {
		_ = r.group.Close()
	}
	r.wg.Wait()
}

// Readiness reports whether the group has an active partition
// assignment. A runner that never started consuming (disabled config,
// non-kafka driver) has nothing to wait for and reports ready.
func (r *Runner) Readiness() (bool, []int32) {
	if !r.running.Load() {
		return true, nil
	}
	if !r.assigned.Load() {
		return false, nil
	}
	r.assignMu.RLock()
	defer r.assignMu.RUnlock()
	parts := make([]int32, 0, len(r.assign))
	for p := range r.assign {
		parts = append(parts, p)
	}
	return true, parts
}

type groupHandler struct {
	setup   func(sarama.ConsumerGroupSession)
	cleanup func()
	process func(context.Context, *sarama.ConsumerMessage)
}

func (h *groupHandler) Setup(sess sarama.ConsumerGroupSession) error {
	if h.setup != nil {
		h.setup(sess)
	}
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	if h.cleanup != nil {
		h.cleanup()
	}
	return nil
}

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		h.process(sess.Context(), msg)
		sess.MarkMessage(msg, "")
	}
	return nil
}
