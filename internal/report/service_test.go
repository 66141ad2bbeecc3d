package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-analytics/internal/analytics"
	"storefront-analytics/internal/metrics"
	"storefront-analytics/internal/order"
	"storefront-analytics/internal/product"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FetchOrders(ctx context.Context, filter *order.OrderFilter) ([]*order.Order, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FetchOrderItems(ctx context.Context, orderIDs []uint) (map[uint][]order.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint][]order.OrderItem), args.Error(1)
}

func (m *MockOrderRepository) GetOrderDetail(ctx context.Context, orderID uint) (*order.Order, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FetchCustomers(ctx context.Context) ([]*order.Customer, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Customer), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

// --- Fixtures ---

var now = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func line(id, productID uint, quantity int, price int64) order.OrderItem {
	return order.OrderItem{ID: id, ProductID: productID, Quantity: quantity, Price: decimal.NewFromInt(price)}
}

func placed(id, userID uint, at time.Time, items ...order.OrderItem) *order.Order {
	return &order.Order{ID: id, UserID: userID, Ordered: true, CreatedAt: at, Items: items}
}

func newTestService(orderRepo *MockOrderRepository, productRepo *MockProductRepository) (*service, *metrics.Registry) {
	reg := metrics.NewRegistry()
	svc := NewService(orderRepo, productRepo, reg, Options{
		TopProductsLimit:    2,
		RecommendationLimit: 5,
		ChurnWindowDays:     90,
	}).(*service)
	svc.now = func() time.Time { return now }
	return svc, reg
}

// --- Tests ---

func TestService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, reg := newTestService(orderRepo, nil)

		from := now.AddDate(0, -1, 0)
		orderRepo.On("FetchOrders", ctx, &order.OrderFilter{From: &from}).Return([]*order.Order{
			placed(1, 1, now, line(1, 10, 3, 1), line(2, 20, 5, 1), line(3, 30, 1, 1)),
			placed(2, 2, now, line(4, 10, 1, 41)),
		}, nil)

		res, err := svc.Summary(ctx, SummaryInput{From: &from})
		require.NoError(t, err)

		assert.Equal(t, 2, res.TotalOrders)
		assert.True(t, decimal.NewFromInt(50).Equal(res.TotalRevenue))
		assert.True(t, decimal.NewFromInt(25).Equal(res.AverageOrderValue))
		assert.Equal(t, []analytics.ProductTally{{ProductID: 20, Count: 5}, {ProductID: 10, Count: 4}}, res.TopProducts)

		assert.Equal(t, 2.0, testutil.ToFloat64(reg.OrdersLoaded))
		assert.Equal(t, 1.0, testutil.ToFloat64(reg.ReportsGenerated.WithLabelValues("summary")))
		orderRepo.AssertExpectations(t)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, reg := newTestService(orderRepo, nil)

		orderRepo.On("FetchOrders", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := svc.Summary(ctx, SummaryInput{})
		assert.EqualError(t, err, "db down")
		assert.Equal(t, 1.0, testutil.ToFloat64(reg.ReportErrors.WithLabelValues("summary")))
	})
}

func TestService_CustomerLifetimeValue(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	svc, _ := newTestService(orderRepo, nil)

	customerID := uint(7)
	orderRepo.On("FetchOrders", ctx, &order.OrderFilter{CustomerID: &customerID}).Return([]*order.Order{
		placed(1, 7, now, line(1, 1, 2, 10)),
		placed(2, 7, now, line(2, 2, 1, 5)),
	}, nil)

	v, err := svc.CustomerLifetimeValue(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(25).Equal(v))
}

func TestService_Segments(t *testing.T) {
	ctx := context.Background()
	orderRepo := new(MockOrderRepository)
	svc, _ := newTestService(orderRepo, nil)

	orderRepo.On("FetchCustomers", ctx).Return([]*order.Customer{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	orderRepo.On("FetchOrders", ctx, (*order.OrderFilter)(nil)).Return([]*order.Order{
		placed(1, 1, now, line(1, 1, 1, 1000)),
		placed(2, 2, now, line(2, 1, 1, 1500)),
	}, nil)

	res, err := svc.Segments(ctx)
	require.NoError(t, err)

	assert.Equal(t, []analytics.CustomerID{2}, res.Segments[analytics.SegmentHighValue])
	assert.Equal(t, []analytics.CustomerID{1}, res.Segments[analytics.SegmentMediumValue])
	assert.Empty(t, res.Segments[analytics.SegmentLowValue])
	assert.Equal(t, []analytics.CustomerID{3}, res.Segments[analytics.SegmentInactive])
}

func TestService_ChurnRate(t *testing.T) {
	ctx := context.Background()

	setup := func() *service {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)
		orderRepo.On("FetchCustomers", ctx).Return([]*order.Customer{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, nil)
		orderRepo.On("FetchOrders", ctx, (*order.OrderFilter)(nil)).Return([]*order.Order{
			placed(1, 1, now.AddDate(0, 0, -89), line(1, 1, 1, 1)),
			placed(2, 2, now.AddDate(0, 0, -91), line(2, 1, 1, 1)),
			placed(3, 3, now.AddDate(0, 0, -20), line(3, 1, 1, 1)),
		}, nil)
		return svc
	}

	t.Run("ConfiguredWindow", func(t *testing.T) {
		res, err := setup().ChurnRate(ctx, 0)
		require.NoError(t, err)

		assert.Equal(t, 90, res.WindowDays)
		assert.Equal(t, 4, res.Customers)
		assert.Equal(t, 50.0, res.Rate)
		assert.Equal(t, now, res.AsOf)
	})

	t.Run("ExplicitWindow", func(t *testing.T) {
		res, err := setup().ChurnRate(ctx, 30)
		require.NoError(t, err)
		assert.Equal(t, 75.0, res.Rate)
	})

	t.Run("CustomersError", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)
		orderRepo.On("FetchCustomers", ctx).Return(nil, errors.New("db error"))

		_, err := svc.ChurnRate(ctx, 0)
		assert.Error(t, err)
		orderRepo.AssertNotCalled(t, "FetchOrders", mock.Anything, mock.Anything)
	})
}

func TestService_ProductReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		productRepo := new(MockProductRepository)
		svc, _ := newTestService(orderRepo, productRepo)

		productRepo.On("GetByID", ctx, uint(1)).Return(&product.Product{ID: 1, Title: "Test Item"}, nil)
		orderRepo.On("FetchOrders", ctx, (*order.OrderFilter)(nil)).Return([]*order.Order{
			placed(1, 1, now, line(1, 1, 2, 10), line(2, 9, 4, 1)),
			placed(2, 2, now, line(3, 1, 1, 13), line(4, 9, 1, 1)),
		}, nil)

		res, err := svc.ProductReport(ctx, 1)
		require.NoError(t, err)

		assert.Equal(t, "Test Item", res.Product.Title)
		assert.Equal(t, 3, res.Performance.TotalSold)
		assert.True(t, decimal.NewFromInt(33).Equal(res.Performance.TotalRevenue))
		assert.True(t, decimal.NewFromInt(11).Equal(res.Performance.AveragePrice))
		assert.Equal(t, []analytics.ProductTally{{ProductID: 9, Count: 2}}, res.Recommendations)
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		productRepo := new(MockProductRepository)
		svc, _ := newTestService(orderRepo, productRepo)

		productRepo.On("GetByID", ctx, uint(5)).Return(nil, product.ErrProductNotFound)

		_, err := svc.ProductReport(ctx, 5)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
		orderRepo.AssertNotCalled(t, "FetchOrders", mock.Anything, mock.Anything)
	})
}

func TestService_MonthlyReport(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)

		end := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
		orderRepo.On("FetchOrders", ctx, &order.OrderFilter{To: &end}).Return([]*order.Order{
			placed(1, 1, time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC), line(1, 1, 1, 10)),
			placed(2, 1, time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC), line(2, 1, 1, 10)),
			placed(3, 2, time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC), line(3, 1, 1, 30)),
		}, nil)

		res, err := svc.MonthlyReport(ctx, 2024, time.June)
		require.NoError(t, err)

		assert.Equal(t, 2, res.TotalOrders)
		assert.True(t, decimal.NewFromInt(40).Equal(res.TotalRevenue))
		assert.Equal(t, 1, res.NewCustomers)
		assert.Equal(t, 1, res.ReturningCustomers)
		assert.Len(t, res.DailySales, 30)
	})

	t.Run("InvalidMonth", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)

		_, err := svc.MonthlyReport(ctx, 2024, time.Month(13))
		assert.ErrorIs(t, err, analytics.ErrInvalidMonth)
		orderRepo.AssertNotCalled(t, "FetchOrders", mock.Anything, mock.Anything)
	})
}

func TestService_RefundQuote(t *testing.T) {
	ctx := context.Background()
	detail := placed(100, 1, now, line(1, 1, 2, 10), line(2, 2, 3, 5))

	t.Run("SelectedItems", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)
		orderRepo.On("GetOrderDetail", ctx, uint(100)).Return(detail, nil)

		res, err := svc.RefundQuote(ctx, 100, []uint{2})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Items)
		assert.True(t, decimal.NewFromInt(15).Equal(res.Amount))
	})

	t.Run("WholeOrder", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)
		orderRepo.On("GetOrderDetail", ctx, uint(100)).Return(detail, nil)

		res, err := svc.RefundQuote(ctx, 100, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Items)
		assert.True(t, decimal.NewFromInt(35).Equal(res.Amount))
	})

	t.Run("ForeignItem", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)
		orderRepo.On("GetOrderDetail", ctx, uint(100)).Return(detail, nil)

		_, err := svc.RefundQuote(ctx, 100, []uint{99})
		assert.ErrorIs(t, err, order.ErrItemNotInOrder)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		svc, _ := newTestService(orderRepo, nil)
		orderRepo.On("GetOrderDetail", ctx, uint(5)).Return(nil, order.ErrOrderNotFound)

		_, err := svc.RefundQuote(ctx, 5, nil)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}
