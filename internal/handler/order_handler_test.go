package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stockroom/internal/model"
)

// MockOrderService is a mock implementation of service.OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, req *model.CreateOrderRequest) (*model.OrderResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderResponse), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context, limit, offset int) ([]model.Order, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func TestOrderHandler_Create(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()

	orderResponse := &model.OrderResponse{
		Order: model.Order{
			ID:           uuid.New(),
			OrderNumber:  "ORD-1700000000000-A1B2",
			CustomerName: "Dana",
			Status:       model.OrderStatusPending,
			TotalAmount:  model.Cents(4500),
		},
		Items: []model.OrderItem{
			{ProductID: productID, ProductName: "Widget", SKU: "WIDGET-1", Quantity: 2, UnitPrice: model.Cents(1500), Subtotal: model.Cents(3000)},
		},
	}

	tests := []struct {
		name           string
		body           string
		mockReturn     *model.OrderResponse
		mockError      error
		expectedStatus int
		expectedCode   string
		expectService  bool
	}{
		{
			name:           "Success",
			body:           `{"customerName":"Dana","items":[{"productId":"` + productID.String() + `","quantity":2}]}`,
			mockReturn:     orderResponse,
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Unknown product",
			body:           `{"customerName":"Dana","items":[{"productId":"` + productID.String() + `","quantity":2}]}`,
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
			expectService:  true,
		},
		{
			name:           "Missing customer name",
			body:           `{"items":[{"productId":"` + productID.String() + `","quantity":2}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "Empty items",
			body:           `{"customerName":"Dana","items":[]}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "Zero quantity item",
			body:           `{"customerName":"Dana","items":[{"productId":"` + productID.String() + `","quantity":0}]}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "Malformed JSON",
			body:           `{"customerName":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidation,
		},
		{
			name:           "Service error",
			body:           `{"customerName":"Dana","items":[{"productId":"` + productID.String() + `","quantity":2}]}`,
			mockError:      errors.New("database error"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("Create", mock.Anything, mock.AnythingOfType("*model.CreateOrderRequest")).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeErrorResponse(t, w).Error)
			}
			if !tt.expectService {
				mockService.AssertNotCalled(t, "Create")
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_Create_ReportsCreditOutcome(t *testing.T) {
	logger := zerolog.Nop()
	productID := uuid.New()
	body := `{"customerName":"Dana","items":[{"productId":"` + productID.String() + `","quantity":1}],"discountCode":"CREDIT-1-ABCDEF","amountUsed":"5.00"}`

	t.Run("redemption applied", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything).Return(&model.OrderResponse{
			Order:        model.Order{ID: uuid.New(), Status: model.OrderStatusPending},
			CreditStatus: model.CreditStatusApplied,
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var got map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "applied", got["creditStatus"])
		assert.NotContains(t, got, "creditWarning")
	})

	t.Run("redemption failure still returns 201", func(t *testing.T) {
		mockService := new(MockOrderService)
		handler := NewOrderHandler(mockService, logger)

		mockService.On("Create", mock.Anything, mock.Anything).Return(&model.OrderResponse{
			Order:         model.Order{ID: uuid.New(), Status: model.OrderStatusPending},
			CreditStatus:  model.CreditStatusFailed,
			CreditWarning: "order created but store credit was not updated: discount code not found",
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
		w := httptest.NewRecorder()

		handler.Create(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var got map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
		assert.Equal(t, "failed", got["creditStatus"])
		assert.Contains(t, got["creditWarning"], "store credit was not updated")
	})
}

func TestOrderHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		paramID        string
		mockReturn     *model.OrderResponse
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:    "Success",
			paramID: orderID.String(),
			mockReturn: &model.OrderResponse{
				Order: model.Order{ID: orderID, OrderNumber: "ORD-1-AAAA"},
			},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Order not found",
			paramID:        orderID.String(),
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Invalid order ID",
			paramID:        "not-a-uuid",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, orderID).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/orders/"+tt.paramID, nil)
			req = withURLParam(req, "id", tt.paramID)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	mockService := new(MockOrderService)
	handler := NewOrderHandler(mockService, logger)

	orders := []model.Order{
		{ID: uuid.New(), OrderNumber: "ORD-1-AAAA"},
		{ID: uuid.New(), OrderNumber: "ORD-2-BBBB"},
	}
	mockService.On("List", mock.Anything, 25, 5).Return(orders, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders?limit=25&offset=5", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Len(t, got, 2)
	mockService.AssertExpectations(t)
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()
	orderID := uuid.New()

	tests := []struct {
		name           string
		paramID        string
		body           string
		status         model.OrderStatus
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			paramID:        orderID.String(),
			body:           `{"status":"completed"}`,
			status:         model.OrderStatusCompleted,
			mockReturn:     &model.Order{ID: orderID, Status: model.OrderStatusCompleted},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown status value",
			paramID:        orderID.String(),
			body:           `{"status":"shipped"}`,
			status:         model.OrderStatus("shipped"),
			mockError:      model.ErrInvalidOrderStatus,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Order not found",
			paramID:        orderID.String(),
			body:           `{"status":"cancelled"}`,
			status:         model.OrderStatusCancelled,
			mockError:      model.ErrOrderNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
		},
		{
			name:           "Missing status",
			paramID:        orderID.String(),
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid order ID",
			paramID:        "not-a-uuid",
			body:           `{"status":"completed"}`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			handler := NewOrderHandler(mockService, logger)

			if tt.expectService {
				mockService.On("UpdateStatus", mock.Anything, orderID, tt.status).
					Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodPatch, "/orders/"+tt.paramID+"/status", bytes.NewBufferString(tt.body))
			req = withURLParam(req, "id", tt.paramID)
			w := httptest.NewRecorder()

			handler.UpdateStatus(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectService {
				mockService.AssertNotCalled(t, "UpdateStatus")
			}
			mockService.AssertExpectations(t)
		})
	}
}
