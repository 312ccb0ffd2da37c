package service

import (
	"context"
	"testing"
	"time"

	"storepos/internal/model"
	"storepos/internal/money"
	"storepos/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFake struct {
	totals  repository.SalesTotals
	ranking []model.ProductRanking
	gotTop  int
}

func (f *reportFake) SalesTotals(ctx context.Context, from, to *time.Time) (repository.SalesTotals, error) {
	return f.totals, nil
}

func (f *reportFake) TopProducts(ctx context.Context, from, to *time.Time, limit int) ([]model.ProductRanking, error) {
	f.gotTop = limit
	return f.ranking, nil
}

func TestSalesReport(t *testing.T) {
	repo := &reportFake{totals: repository.SalesTotals{
		BillCount:   2,
		TotalSales:  money.MustParse("150.00"),
		TotalTax:    money.MustParse("27.00"),
		TotalGrand:  money.MustParse("177.00"),
		TotalProfit: money.MustParse("18.00"),
	}}
	svc := NewReportService(repo)
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	r, err := svc.SalesReport(context.Background(), &from, &to, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), r.BillCount)
	assert.Equal(t, "18.00", r.TotalProfit.String())
	assert.NotNil(t, r.TopProducts)
	assert.Equal(t, 5, repo.gotTop)
	assert.Equal(t, &from, r.RangeStartDate)

	_, err = svc.SalesReport(context.Background(), &to, &from, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
