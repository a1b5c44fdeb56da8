package service

import (
	"context"

	"budget/aggregate"
	"budget/models"

	"golang.org/x/sync/errgroup"
)

// RecentLimit 仪表盘最近账目条数
const RecentLimit = 5

// Dashboard 当月概览
type Dashboard struct {
	Summary            aggregate.Summary          `json:"summary"`
	CategorySpending   []aggregate.CategoryAmount `json:"categorySpending"`
	RecentTransactions []models.Transaction       `json:"recentTransactions"`
}

// DashboardService 组装仪表盘
type DashboardService struct {
	reports *ReportService
	ledger  *LedgerService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(reports *ReportService, ledger *LedgerService) *DashboardService {
	return &DashboardService{reports: reports, ledger: ledger}
}

// Get 当月汇总、支出分布和最近账目。两次读取并发进行，任一失败则整体失败
func (s *DashboardService) Get(ctx context.Context, userID uint) (*Dashboard, error) {
	month := aggregate.MonthRange(s.reports.Now())

	var monthTxs, recent []models.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		monthTxs, err = s.reports.InRange(gctx, userID, month)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.ledger.Recent(gctx, userID, RecentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Summary:            aggregate.Summarize(monthTxs, month),
		CategorySpending:   aggregate.BreakdownByCategory(monthTxs, month),
		RecentTransactions: recent,
	}, nil
}

// Weekly 最近 7 天按星期几的净额
func (s *DashboardService) Weekly(ctx context.Context, userID uint) ([]aggregate.WeekdayAmount, error) {
	return s.reports.Weekly(ctx, userID)
}
