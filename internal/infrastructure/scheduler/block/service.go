package blockscheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/ticker"
	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/core/ports"
)

const defaultTickerInterval = 10 * time.Second

type tipFetcher interface {
	GetBlockCount(ctx context.Context) (int64, error)
}

type Option func(*service)

func WithTickerInterval(interval time.Duration) Option {
	return func(s *service) {
		s.ticker = ticker.New(interval)
	}
}

// WithTicker lets the caller drive the scheduler, ie. with a ticker.Force.
func WithTicker(t ticker.Ticker) Option {
	return func(s *service) {
		s.ticker = t
	}
}

type service struct {
	ledger  tipFetcher
	lock    sync.Locker
	tasks   map[int64][]func()
	stopCh  chan struct{}
	ticker  ticker.Ticker
	timeout time.Duration
}

func NewScheduler(ledger tipFetcher, opts ...Option) (ports.SchedulerService, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}

	svc := &service{
		ledger,
		&sync.Mutex{},
		make(map[int64][]func()),
		make(chan struct{}),
		ticker.New(defaultTickerInterval),
		5 * time.Second,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

func (s *service) Start() {
	s.ticker.Resume()
	go func() {
		for {
			select {
			case <-s.stopCh:
				return
			case <-s.ticker.Ticks():
				tasks, err := s.popTasks()
				if err != nil {
					log.Errorf("error fetching tasks: %s", err)
					continue
				}

				log.Debugf("fetched %d tasks", len(tasks))
				for _, task := range tasks {
					go task()
				}
			}
		}
	}()
}

func (s *service) Stop() {
	s.ticker.Stop()
	close(s.stopCh)
}

func (s *service) AddNow(delta int64) (int64, error) {
	tip, err := s.fetchTipHeight()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch tip height: %w", err)
	}
	return tip + delta, nil
}

func (s *service) AfterNow(height int64) bool {
	tip, err := s.fetchTipHeight()
	if err != nil {
		return false
	}

	return height > tip
}

func (s *service) ScheduleTaskOnce(at int64, task func()) error {
	if task == nil {
		return fmt.Errorf("missing task")
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.tasks[at] = append(s.tasks[at], task)

	return nil
}

func (s *service) popTasks() ([]func(), error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.tasks) <= 0 {
		return nil, nil
	}

	tip, err := s.fetchTipHeight()
	if err != nil {
		return nil, err
	}

	tasks := make([]func(), 0)

	for height, pending := range s.tasks {
		if height > tip {
			continue
		}

		tasks = append(tasks, pending...)
		delete(s.tasks, height)
	}

	return tasks, nil
}

func (s *service) fetchTipHeight() (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	tip, err := s.ledger.GetBlockCount(ctx)
	if err != nil {
		return 0, err
	}

	log.Debugf("fetched tip height %d", tip)

	return tip, nil
}
