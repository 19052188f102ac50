package service

import (
	"time"

	"go-pos-farmstall/internal/repository"
)

const defaultTopProducts = 10

type StatsService interface {
	TodayStats(topN int) (*TodayStats, error)
}

// TodayStats is the derived view over today's slice of the ledger. It is
// recomputed on every call; there is no cache to fall out of sync.
type TodayStats struct {
	TransactionsCount int64                       `json:"transactions_count"`
	TotalSalesValue   float64                     `json:"total_sales_value"`
	TotalItemsSold    int64                       `json:"total_items_sold"`
	AvgBasketSize     float64                     `json:"avg_basket_size"`
	TopProducts       []repository.TopProductRow  `json:"top_products"`
	RevenuePerHour    []repository.HourRevenueRow `json:"revenue_per_hour"`
}

type statsService struct {
	ledgerRepo repository.LedgerRepository
}

func NewStatsService(ledgerRepo repository.LedgerRepository) StatsService {
	return &statsService{ledgerRepo: ledgerRepo}
}

func (s *statsService) TodayStats(topN int) (*TodayStats, error) {
	if topN <= 0 {
		topN = defaultTopProducts
	}

	// "Today" is the server's local calendar day at query time.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1)

	totals, err := s.ledgerRepo.TotalsBetween(start, end)
	if err != nil {
		return nil, err
	}

	stats := &TodayStats{
		TransactionsCount: totals.TransactionsCount,
		TotalSalesValue:   round2(totals.TotalSalesValue),
		TotalItemsSold:    totals.TotalItemsSold,
		TopProducts:       []repository.TopProductRow{},
		RevenuePerHour:    []repository.HourRevenueRow{},
	}

	// Defined as 0 when there are no transactions, not an error.
	if totals.TransactionsCount > 0 {
		stats.AvgBasketSize = round2(float64(totals.TotalItemsSold) / float64(totals.TransactionsCount))
	}

	topProducts, err := s.ledgerRepo.TopProductsBetween(start, end, topN)
	if err != nil {
		return nil, err
	}
	if topProducts != nil {
		stats.TopProducts = topProducts
	}

	revenuePerHour, err := s.ledgerRepo.RevenuePerHourBetween(start, end)
	if err != nil {
		return nil, err
	}
	for _, row := range revenuePerHour {
		row.Revenue = round2(row.Revenue)
		stats.RevenuePerHour = append(stats.RevenuePerHour, row)
	}

	return stats, nil
}
