package jobs

import (
	"log"

	"go-pos-farmstall/internal/repository"
	"go-pos-farmstall/internal/ws"

	"github.com/robfig/cron/v3"
)

// LowStockWatcher periodically sweeps the catalog and broadcasts products
// running low so terminals can flag them before checkouts start failing.
type LowStockWatcher struct {
	scheduler   *cron.Cron
	productRepo repository.ProductRepository
	hub         *ws.Hub
	threshold   int
}

func NewLowStockWatcher(productRepo repository.ProductRepository, hub *ws.Hub, threshold int) *LowStockWatcher {
	return &LowStockWatcher{
		scheduler:   cron.New(),
		productRepo: productRepo,
		hub:         hub,
		threshold:   threshold,
	}
}

func (w *LowStockWatcher) Start() {
	if _, err := w.scheduler.AddFunc("@every 5m", w.sweep); err != nil {
		log.Printf("low-stock watcher: failed to schedule sweep: %v", err)
		return
	}
	w.scheduler.Start()
	log.Printf("Low-stock watcher started (threshold < %d)", w.threshold)
}

func (w *LowStockWatcher) Stop() {
	w.scheduler.Stop()
}

func (w *LowStockWatcher) sweep() {
	products, err := w.productRepo.FindLowStock(w.threshold)
	if err != nil {
		log.Printf("low-stock watcher: sweep failed: %v", err)
		return
	}
	if len(products) == 0 {
		return
	}

	items := make([]map[string]interface{}, 0, len(products))
	for _, p := range products {
		items = append(items, map[string]interface{}{
			"id":        p.ID,
			"name":      p.Name,
			"stock_qty": p.StockQty,
		})
	}

	w.hub.BroadcastJSON(map[string]interface{}{
		"type":      "low_stock",
		"threshold": w.threshold,
		"products":  items,
	})
}
