package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"stock-tracker/src/analysis"
	"stock-tracker/src/interfaces"
	"stock-tracker/src/logger"
	"stock-tracker/src/models"
	"stock-tracker/src/utils"
)

// -----------------------------------------------------------------------------
// BroadcastPoller
// -----------------------------------------------------------------------------

// BroadcastPoller is the live-update loop: on a fixed interval it reads the
// tracked symbols from the store, fetches a fresh snapshot per symbol and
// pushes one price update per symbol to the exchanger. It never writes to
// the store, so the REST refresh path and this loop stay independent.
type BroadcastPoller struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	Store     interfaces.IStockStore
	Source    interfaces.IQuoteSource
	Exchanger interfaces.IDataExchanger
	Scheduler *utils.MarketScheduler

	cancelFunc context.CancelFunc
	mu         sync.Mutex
	running    bool
}

// -----------------------------------------------------------------------------

func NewBroadcastPoller(cfg *models.MConfig, log *logger.Logger, store interfaces.IStockStore,
	source interfaces.IQuoteSource, exchanger interfaces.IDataExchanger) *BroadcastPoller {
	return &BroadcastPoller{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Source:    source,
		Exchanger: exchanger,
		Scheduler: utils.NewMarketScheduler(log),
	}
}

// -----------------------------------------------------------------------------

// Start launches the loop. Cancelling the parent context stops it; the
// WaitGroup is signalled once the loop goroutine has fully exited.
func (p *BroadcastPoller) Start(parentCtx context.Context, wg *sync.WaitGroup) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return fmt.Errorf("poller is already running")
	}

	ctx, cancel := context.WithCancel(parentCtx)
	p.cancelFunc = cancel
	p.running = true

	wg.Add(1)
	go p.runLoop(ctx, wg)
	p.Logger.Info("Background price poller started (interval %ds)", p.Config.Poller.IntervalSeconds)
	return nil
}

// -----------------------------------------------------------------------------

// Stop signals the run loop to exit
func (p *BroadcastPoller) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return fmt.Errorf("poller is not running")
	}

	p.cancelFunc()
	p.running = false
	return nil
}

// -----------------------------------------------------------------------------

func (p *BroadcastPoller) runLoop(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	ticker := time.NewTicker(time.Duration(p.Config.Poller.IntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.RunCycle()
		}
	}
}

// -----------------------------------------------------------------------------

// RunCycle performs one poll pass. Exported so tests can drive a bounded
// number of iterations without the ticker.
func (p *BroadcastPoller) RunCycle() {
	stocks, err := p.Store.GetAll()
	if err != nil {
		p.Logger.Error("Polling: failed to load tracked symbols: %v", err)
		return
	}
	if len(stocks) == 0 {
		return
	}

	if p.Config.Poller.MarketHoursOnly {
		symbols := make([]string, len(stocks))
		for i, s := range stocks {
			symbols[i] = s.Symbol
		}
		p.Scheduler.UpdateSymbols(symbols)

		if !p.Scheduler.AnyMarketOpen() {
			p.Logger.Debug("Polling: all markets closed, skipping cycle")
			return
		}
	}

	for _, stock := range stocks {
		update, err := p.fetchUpdate(stock.Symbol)
		if err != nil {
			p.Logger.Warning("Polling error for %s: %v", stock.Symbol, err)
			continue
		}
		p.Exchanger.Broadcast(update)
	}
}

// -----------------------------------------------------------------------------

func (p *BroadcastPoller) fetchUpdate(symbol string) (*models.MPriceUpdate, error) {
	snapshot, err := p.Source.Quote(symbol)
	if err != nil {
		return nil, err
	}

	if snapshot.Price == nil || snapshot.PreviousClose == nil {
		return nil, fmt.Errorf("incomplete data for %s, skipping update", symbol)
	}

	price := *snapshot.Price
	prevClose := *snapshot.PreviousClose

	return &models.MPriceUpdate{
		Symbol:          symbol,
		Price:           analysis.Round2(price),
		Change:          analysis.Round2(price - prevClose),
		Percent:         analysis.Round2(analysis.ChangePercent(price, prevClose)),
		Open:            snapshot.Open,
		DayHigh:         snapshot.DayHigh,
		DayLow:          snapshot.DayLow,
		LongName:        snapshot.LongName,
		MarketState:     snapshot.MarketState,
		PreMarketPrice:  snapshot.PreMarketPrice,
		PostMarketPrice: snapshot.PostMarketPrice,
	}, nil
}
