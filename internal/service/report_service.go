package service

import (
	"context"
	"fmt"
	"time"

	"storepos/internal/model"
	"storepos/internal/repository"
)

type ReportService interface {
	SalesReport(ctx context.Context, from, to *time.Time, top int) (*model.SalesReport, error)
}

type reportService struct {
	repo repository.ReportRepository
}

func NewReportService(repo repository.ReportRepository) ReportService {
	return &reportService{repo: repo}
}

// SalesReport aggregates committed bills between from and to, both inclusive
// and optional. Profit uses the per-unit profit captured on each bill line.
func (s *reportService) SalesReport(ctx context.Context, from, to *time.Time, top int) (*model.SalesReport, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidInput)
	}
	if top <= 0 {
		top = 5
	}

	totals, err := s.repo.SalesTotals(ctx, from, to)
	if err != nil {
		return nil, err
	}
	ranking, err := s.repo.TopProducts(ctx, from, to, top)
	if err != nil {
		return nil, err
	}
	if ranking == nil {
		ranking = []model.ProductRanking{}
	}

	return &model.SalesReport{
		BillCount:      totals.BillCount,
		TotalSales:     totals.TotalSales,
		TotalTax:       totals.TotalTax,
		TotalGrand:     totals.TotalGrand,
		TotalProfit:    totals.TotalProfit,
		TopProducts:    ranking,
		RangeStartDate: from,
		RangeEndDate:   to,
	}, nil
}
