package usecase

import (
	"context"
	"sort"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type DashboardUsecase struct {
	orders   repo.OrderRepository
	products repo.ProductRepository
}

func NewDashboardUsecase(orders repo.OrderRepository, products repo.ProductRepository) *DashboardUsecase {
	return &DashboardUsecase{orders: orders, products: products}
}

type SalesTrendPoint struct {
	Name  string `json:"name"`
	Sales int64  `json:"sales"`
}

type CategoryCount struct {
	Name  string `json:"name"`
	Value int64  `json:"value"`
}

type DashboardStats struct {
	TotalOrders          int64             `json:"total_orders"`
	ProductsCount        int64             `json:"products_count"`
	TotalSales           int64             `json:"total_sales"`
	NetSales             int64             `json:"net_sales"`
	CancelledOrders      int64             `json:"cancelled_orders"`
	CancelledAmount      int64             `json:"cancelled_amount"`
	SalesTrend           []SalesTrendPoint `json:"sales_trend"`
	CategoryDistribution []CategoryCount   `json:"category_distribution"`
}

var dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func (u *DashboardUsecase) Stats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	var err error

	if s.TotalOrders, err = u.orders.CountAll(ctx); err != nil {
		return DashboardStats{}, ErrInternalDB
	}
	if s.ProductsCount, err = u.products.CountAll(ctx); err != nil {
		return DashboardStats{}, ErrInternalDB
	}

	//売上はキャンセル除外、純売上は配達完了分のみ
	if s.TotalSales, err = u.orders.SumAmountExcludingStatus(ctx, model.OrderStatusCancelled); err != nil {
		return DashboardStats{}, ErrInternalDB
	}
	if s.NetSales, err = u.orders.SumAmountByStatus(ctx, model.OrderStatusDelivered); err != nil {
		return DashboardStats{}, ErrInternalDB
	}

	if s.CancelledOrders, err = u.orders.CountByStatus(ctx, model.OrderStatusCancelled); err != nil {
		return DashboardStats{}, ErrInternalDB
	}
	if s.CancelledAmount, err = u.orders.SumAmountByStatus(ctx, model.OrderStatusCancelled); err != nil {
		return DashboardStats{}, ErrInternalDB
	}

	//直近7日の売上推移（キャンセル除外）
	now := time.Now()
	sevenDaysAgo := now.AddDate(0, 0, -6).Truncate(24 * time.Hour)
	recent, err := u.orders.ListSinceExcludingStatus(ctx, sevenDaysAgo, model.OrderStatusCancelled)
	if err != nil {
		return DashboardStats{}, ErrInternalDB
	}

	byDay := make(map[string]int64, 7)
	for _, o := range recent {
		byDay[o.CreatedAt.Format("2006-01-02")] += o.TotalAmount
	}
	s.SalesTrend = make([]SalesTrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		d := now.AddDate(0, 0, -i)
		s.SalesTrend = append(s.SalesTrend, SalesTrendPoint{
			Name:  dayNames[int(d.Weekday())],
			Sales: byDay[d.Format("2006-01-02")],
		})
	}

	//カテゴリ分布（多い順に上位4件）
	counts, err := u.products.CountByCategory(ctx)
	if err != nil {
		return DashboardStats{}, ErrInternalDB
	}
	dist := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		if name == "" {
			name = "Uncategorized"
		}
		dist = append(dist, CategoryCount{Name: name, Value: n})
	}
	sort.Slice(dist, func(i, j int) bool {
		if dist[i].Value != dist[j].Value {
			return dist[i].Value > dist[j].Value
		}
		return dist[i].Name < dist[j].Name
	})
	if len(dist) > 4 {
		dist = dist[:4]
	}
	s.CategoryDistribution = dist

	return s, nil
}
