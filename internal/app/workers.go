package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/serviceflow_backend/config"
	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/recurrence"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/recurring"
)

const generateQueue = "serviceflow-recurrence"

// WorkerModule registers the background generation workers.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc           fx.Lifecycle
	Cfg          *config.Config
	NC           *nats.Conn `optional:"true"`
	RecurringSvc recurring.Service
}

func RegisterWorkers(p WorkerParams) {
	var (
		sub    *nats.Subscription
		catch  *CatchUp
		cancel context.CancelFunc
	)

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.NC != nil {
				s, err := startGenerateResponder(p.NC, p.RecurringSvc)
				if err != nil {
					return err
				}
				sub = s
			}
			if p.Cfg.Recurrence.CatchUpEnabled {
				var runCtx context.Context
				runCtx, cancel = context.WithCancel(context.Background())
				catch = NewCatchUp(p.RecurringSvc, catchUpInterval(p.Cfg), p.Cfg.Recurrence.HorizonDays)
				catch.Start(runCtx)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
				catch.Wait()
			}
			if sub != nil {
				return sub.Unsubscribe()
			}
			return nil
		},
	})
}

func catchUpInterval(cfg *config.Config) time.Duration {
	if cfg.Recurrence.CatchUpIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(cfg.Recurrence.CatchUpIntervalMinutes) * time.Minute
}

// ---------------------------------------------------------------------------
// generate_responder
// ---------------------------------------------------------------------------

// startGenerateResponder answers generation requests on a queue group so only
// one replica serves each request.
func startGenerateResponder(nc *nats.Conn, svc recurring.Service) (*nats.Subscription, error) {
	sub, err := nc.QueueSubscribe(recurring.SubjectGenerate, generateQueue, func(msg *nats.Msg) {
		reply := svc.HandleRequest(context.Background(), msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			slog.Warn("generate_responder: respond failed", "err", err)
		}
	})
	if err != nil {
		slog.Error("generate_responder: subscribe failed", "subject", recurring.SubjectGenerate, "err", err)
		return nil, err
	}
	slog.Info("generate_responder: started", "subject", recurring.SubjectGenerate)
	return sub, nil
}

// ---------------------------------------------------------------------------
// catchup_worker
// ---------------------------------------------------------------------------

// CatchUp periodically fills [today, today+horizon] for every owner.
type CatchUp struct {
	svc      recurring.Service
	interval time.Duration
	horizon  int
	today    func() model.Date
	wg       sync.WaitGroup
}

func NewCatchUp(svc recurring.Service, interval time.Duration, horizonDays int) *CatchUp {
	if horizonDays <= 0 {
		horizonDays = 30
	}
	return &CatchUp{svc: svc, interval: interval, horizon: horizonDays, today: model.Today}
}

// Window is the range a run covers.
func (c *CatchUp) Window() recurrence.Range {
	today := c.today()
	return recurrence.NewRange(today, today.AddDays(c.horizon))
}

// RunOnce performs a single pass and returns how many jobs it created.
func (c *CatchUp) RunOnce(ctx context.Context) (int, error) {
	n, err := c.svc.GenerateAll(ctx, recurring.SourceCatchUp, c.Window())
	if err != nil {
		slog.Error("catchup_worker: run failed", "err", err)
		return 0, err
	}
	return n, nil
}

// Start runs immediately and then every interval until ctx is cancelled.
func (c *CatchUp) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.RunOnce(ctx)
			}
		}
	}()
	slog.Info("catchup_worker: started", "interval", c.interval, "horizon_days", c.horizon)
}

func (c *CatchUp) Wait() { c.wg.Wait() }
