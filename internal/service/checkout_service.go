package service

import (
	"errors"
	"fmt"
	"time"

	"go-pos-farmstall/internal/model"
	"go-pos-farmstall/internal/repository"
	"go-pos-farmstall/internal/ws"

	"gorm.io/gorm"
)

type CheckoutService interface {
	Checkout(cart []CartLine, actorID uint, actorName string) (*CheckoutResult, error)
	GetAllTransactions() ([]TransactionResponse, error)
	GetTransactionByID(id uint) (*TransactionResponse, error)
}

// CartLine is one proposed sale line. ProductRef, when set, goes through the
// scan/search resolution chain (barcode, id, name); otherwise ProductID is
// looked up directly.
type CartLine struct {
	ProductID  uint   `json:"product_id,omitempty"`
	ProductRef string `json:"product_ref,omitempty"`
	Qty        int    `json:"qty"`
}

type CheckoutResult struct {
	TransactionID uint                 `json:"transaction_id"`
	Total         float64              `json:"total"`
	Stock         []StockAfterCheckout `json:"stock"`
}

// StockAfterCheckout reports the post-commit stock level per sold product so
// the UI can refresh without another round trip.
type StockAfterCheckout struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	StockQty  int    `json:"stock_qty"`
}

type TransactionResponse struct {
	ID       uint                      `json:"id"`
	DateTime time.Time                 `json:"date_time"`
	Total    float64                   `json:"total"`
	Cashier  string                    `json:"cashier,omitempty"`
	Lines    []TransactionLineResponse `json:"lines"`
}

type TransactionLineResponse struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Qty       int     `json:"qty"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// resolvedLine carries the price and stock snapshot taken during validation.
// The snapshot price is what gets committed, even if an admin edits the
// product between validation and commit.
type resolvedLine struct {
	product   *model.Product
	qty       int
	unitPrice float64
}

type checkoutService struct {
	productRepo repository.ProductRepository
	ledgerRepo  repository.LedgerRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewCheckoutService(
	pRepo repository.ProductRepository,
	lRepo repository.LedgerRepository,
	db *gorm.DB,
	hub *ws.Hub,
) CheckoutService {
	return &checkoutService{
		productRepo: pRepo,
		ledgerRepo:  lRepo,
		db:          db,
		wsHub:       hub,
	}
}

// Checkout turns a cart into a committed transaction or rejects it whole.
// Validation happens before any mutation; the commit is a single database
// transaction where the guarded stock decrement serializes concurrent
// checkouts on the same product. Any failure rolls everything back.
func (s *checkoutService) Checkout(cart []CartLine, actorID uint, actorName string) (*CheckoutResult, error) {
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	resolved := make([]resolvedLine, 0, len(cart))
	for i, line := range cart {
		if line.Qty <= 0 {
			return nil, fmt.Errorf("cart line %d: %w", i+1, ErrInvalidQuantity)
		}

		var product *model.Product
		var err error
		if line.ProductRef != "" {
			product, err = resolveProductRef(s.productRepo, line.ProductRef)
		} else {
			product, err = s.productRepo.FindByID(line.ProductID)
			if err != nil {
				err = ErrProductNotFound
			}
		}
		if err != nil {
			return nil, fmt.Errorf("cart line %d: %w", i+1, err)
		}

		// Fail fast on stock the validation snapshot already rules out. The
		// decrement below re-checks under the commit transaction, so a stale
		// snapshot can only cause a rejection, never an oversell.
		if product.StockQty < line.Qty {
			return nil, insufficientStockError(product, line.Qty)
		}

		resolved = append(resolved, resolvedLine{
			product:   product,
			qty:       line.Qty,
			unitPrice: product.Price,
		})
	}

	transaction := &model.Transaction{
		DateTime:        time.Now(),
		CreatedByUserID: &actorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		total := 0.0
		lines := make([]model.TransactionLine, 0, len(resolved))

		for _, line := range resolved {
			if err := s.productRepo.DecrementStock(tx, line.product.ID, line.qty, actorName); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return insufficientStockError(line.product, line.qty)
				}
				return err
			}
			lines = append(lines, model.TransactionLine{
				ProductID: line.product.ID,
				Qty:       line.qty,
				UnitPrice: line.unitPrice,
			})
			total += float64(line.qty) * line.unitPrice
		}

		transaction.Total = round2(total)
		transaction.Lines = lines
		return s.ledgerRepo.CreateWithLines(tx, transaction)
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		TransactionID: transaction.ID,
		Total:         transaction.Total,
		Stock:         make([]StockAfterCheckout, 0, len(resolved)),
	}
	for _, line := range resolved {
		stockQty := line.product.StockQty - line.qty
		if refreshed, err := s.productRepo.FindByID(line.product.ID); err == nil {
			stockQty = refreshed.StockQty
		}
		result.Stock = append(result.Stock, StockAfterCheckout{
			ProductID: line.product.ID,
			Name:      line.product.Name,
			StockQty:  stockQty,
		})
	}

	s.broadcastCheckout(transaction, result, actorName)
	return result, nil
}

func insufficientStockError(product *model.Product, wanted int) error {
	return fmt.Errorf("product '%s': %w (requested %d, available %d)",
		product.Name, ErrInsufficientStock, wanted, product.StockQty)
}

func (s *checkoutService) GetAllTransactions() ([]TransactionResponse, error) {
	transactions, err := s.ledgerRepo.FindAll()
	if err != nil {
		return nil, err
	}
	responses := make([]TransactionResponse, 0, len(transactions))
	for i := range transactions {
		responses = append(responses, toTransactionResponse(&transactions[i]))
	}
	return responses, nil
}

func (s *checkoutService) GetTransactionByID(id uint) (*TransactionResponse, error) {
	transaction, err := s.ledgerRepo.FindByID(id)
	if err != nil {
		return nil, ErrTransactionNotFound
	}
	response := toTransactionResponse(transaction)
	return &response, nil
}

func toTransactionResponse(t *model.Transaction) TransactionResponse {
	response := TransactionResponse{
		ID:       t.ID,
		DateTime: t.DateTime,
		Total:    t.Total,
		Lines:    make([]TransactionLineResponse, 0, len(t.Lines)),
	}
	if t.CreatedByUser != nil {
		response.Cashier = t.CreatedByUser.Username
	}
	for _, line := range t.Lines {
		name := fmt.Sprintf("Product %d", line.ProductID)
		if line.Product != nil {
			name = line.Product.Name
		}
		response.Lines = append(response.Lines, TransactionLineResponse{
			ProductID: line.ProductID,
			Name:      name,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			Subtotal:  round2(line.Subtotal()),
		})
	}
	return response
}

func (s *checkoutService) broadcastCheckout(t *model.Transaction, result *CheckoutResult, actorName string) {
	if s.wsHub == nil {
		return
	}
	go s.wsHub.BroadcastJSON(map[string]interface{}{
		"type":   "stock_update",
		"action": "transaction_committed",
		"transaction": map[string]interface{}{
			"id":    t.ID,
			"total": t.Total,
		},
		"stock":   result.Stock,
		"user":    actorName,
		"message": fmt.Sprintf("%s committed sale #%d", actorName, t.ID),
	})
}
