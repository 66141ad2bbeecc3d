package report

import (
	"context"
	"fmt"
	"time"

	"storefront-analytics/internal/analytics"
	"storefront-analytics/internal/logger"
	"storefront-analytics/internal/metrics"
	"storefront-analytics/internal/order"
	"storefront-analytics/internal/product"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	Summary(ctx context.Context, input SummaryInput) (*Summary, error)
	CustomerLifetimeValue(ctx context.Context, customerID uint) (decimal.Decimal, error)
	Segments(ctx context.Context) (*SegmentReport, error)
	ChurnRate(ctx context.Context, days int) (*ChurnReport, error)
	ProductReport(ctx context.Context, productID uint) (*ProductReport, error)
	MonthlyReport(ctx context.Context, year int, month time.Month) (*analytics.MonthlyReport, error)
	RefundQuote(ctx context.Context, orderID uint, itemIDs []uint) (*RefundQuote, error)
}

type Options struct {
	TopProductsLimit    int
	RecommendationLimit int
	ChurnWindowDays     int
}

type service struct {
	orderRepo   order.Repository
	productRepo product.Repository
	metrics     *metrics.Registry
	opts        Options
	now         func() time.Time
}

func NewService(orderRepo order.Repository, productRepo product.Repository, reg *metrics.Registry, opts Options) Service {
	return &service{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		metrics:     reg,
		opts:        opts,
		now:         time.Now,
	}
}

func (s *service) Summary(ctx context.Context, input SummaryInput) (res *Summary, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("summary", timer, err) }()

	log := logger.FromCtx(ctx).With(zap.String("method", "Summary"))

	orders, err := s.fetchOrders(ctx, &order.OrderFilter{From: input.From, To: input.To})
	if err != nil {
		log.Error("failed to load orders", zap.Error(err))
		return nil, err
	}

	records := order.AsRecords(orders)
	res = &Summary{
		From:              input.From,
		To:                input.To,
		TotalOrders:       len(orders),
		TotalRevenue:      analytics.TotalRevenue(records),
		AverageOrderValue: analytics.AverageOrderValue(records),
		TopProducts:       analytics.TopProducts(records, s.opts.TopProductsLimit),
	}

	log.Info("summary generated",
		zap.Int("orders", res.TotalOrders),
		zap.String("revenue", res.TotalRevenue.String()),
		zap.Duration("duration", timer.Duration()),
	)
	return res, nil
}

func (s *service) CustomerLifetimeValue(ctx context.Context, customerID uint) (v decimal.Decimal, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("customer_lifetime_value", timer, err) }()

	orders, err := s.fetchOrders(ctx, &order.OrderFilter{CustomerID: &customerID})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load customer orders",
			zap.Uint("customer_id", customerID),
			zap.Error(err),
		)
		return decimal.Zero, err
	}

	return analytics.CustomerLifetimeValue(analytics.CustomerID(customerID), order.AsRecords(orders)), nil
}

func (s *service) Segments(ctx context.Context) (res *SegmentReport, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("segments", timer, err) }()

	customers, err := s.fetchCustomers(ctx)
	if err != nil {
		return nil, err
	}

	segments := analytics.SegmentCustomers(order.CustomersAsRecords(customers))

	res = &SegmentReport{Segments: make(map[analytics.Segment][]analytics.CustomerID, len(segments))}
	for _, seg := range analytics.Segments {
		ids := make([]analytics.CustomerID, 0, len(segments[seg]))
		for _, c := range segments[seg] {
			ids = append(ids, c.Key())
		}
		res.Segments[seg] = ids
	}

	logger.FromCtx(ctx).Info("customers segmented",
		zap.Int("customers", len(customers)),
		zap.Int("high_value", len(res.Segments[analytics.SegmentHighValue])),
	)
	return res, nil
}

func (s *service) ChurnRate(ctx context.Context, days int) (res *ChurnReport, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("churn", timer, err) }()

	if days <= 0 {
		days = s.opts.ChurnWindowDays
	}
	if days <= 0 {
		days = analytics.DefaultChurnWindowDays
	}

	customers, err := s.fetchCustomers(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	res = &ChurnReport{
		WindowDays: days,
		AsOf:       now,
		Customers:  len(customers),
		Rate:       analytics.ChurnRateAt(order.CustomersAsRecords(customers), days, now),
	}

	logger.FromCtx(ctx).Info("churn rate computed",
		zap.Int("window_days", days),
		zap.Float64("rate", res.Rate),
	)
	return res, nil
}

func (s *service) ProductReport(ctx context.Context, productID uint) (res *ProductReport, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("product", timer, err) }()

	log := logger.FromCtx(ctx).With(zap.Uint("product_id", productID))

	p, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		log.Warn("product lookup failed", zap.Error(err))
		return nil, err
	}

	orders, err := s.fetchOrders(ctx, nil)
	if err != nil {
		log.Error("failed to load orders", zap.Error(err))
		return nil, err
	}

	records := order.AsRecords(orders)
	id := analytics.ProductID(productID)

	return &ProductReport{
		Product:         *p,
		Performance:     analytics.AnalyzeProductPerformance(id, records),
		Recommendations: analytics.ProductRecommendations(id, records, s.opts.RecommendationLimit),
	}, nil
}

func (s *service) MonthlyReport(ctx context.Context, year int, month time.Month) (res *analytics.MonthlyReport, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("monthly", timer, err) }()

	if month < time.January || month > time.December {
		return nil, analytics.ErrInvalidMonth
	}

	// Earlier orders are needed to tell new customers from returning ones.
	end := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	orders, err := s.fetchOrders(ctx, &order.OrderFilter{To: &end})
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load orders", zap.Error(err))
		return nil, err
	}

	res, err = analytics.GenerateMonthlyReport(order.AsRecords(orders), year, month)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("monthly report generated",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("orders", res.TotalOrders),
	)
	return res, nil
}

func (s *service) RefundQuote(ctx context.Context, orderID uint, itemIDs []uint) (res *RefundQuote, err error) {
	timer := metrics.StartTimer()
	defer func() { s.metrics.Observe("refund", timer, err) }()

	o, err := s.orderRepo.GetOrderDetail(ctx, orderID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]order.OrderItem, len(o.Items))
	for _, item := range o.Items {
		byID[item.ID] = item
	}

	// No ids refunds the whole order.
	var refunded []analytics.Item
	if len(itemIDs) == 0 {
		refunded = o.LineItems()
	}
	for _, id := range itemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("item %d: %w", id, order.ErrItemNotInOrder)
		}
		refunded = append(refunded, item)
	}

	res = &RefundQuote{
		OrderID: orderID,
		Items:   len(refunded),
		Amount:  analytics.RefundAmount(refunded),
	}

	logger.FromCtx(ctx).Info("refund quoted",
		zap.Uint("order_id", orderID),
		zap.String("amount", res.Amount.String()),
	)
	return res, nil
}

func (s *service) fetchOrders(ctx context.Context, filter *order.OrderFilter) ([]*order.Order, error) {
	orders, err := s.orderRepo.FetchOrders(ctx, filter)
	if err != nil {
		return nil, err
	}
	s.metrics.OrdersLoaded.Add(float64(len(orders)))
	return orders, nil
}

// fetchCustomers loads customers with their placed orders attached.
func (s *service) fetchCustomers(ctx context.Context) ([]*order.Customer, error) {
	customers, err := s.orderRepo.FetchCustomers(ctx)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load customers", zap.Error(err))
		return nil, err
	}

	orders, err := s.fetchOrders(ctx, nil)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load orders", zap.Error(err))
		return nil, err
	}

	order.AttachOrders(customers, orders)
	s.metrics.CustomersLoaded.Add(float64(len(customers)))
	return customers, nil
}
