package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-pos-farmstall/internal/model"
	"go-pos-farmstall/internal/repository"
	"go-pos-farmstall/internal/ws"
	"go-pos-farmstall/pkg/barcode"
	"go-pos-farmstall/pkg/validator"

	"gorm.io/gorm"
)

// maxBarcodeAttempts bounds server-side barcode generation. Each attempt uses
// fresh randomness; running out means the internal-use number space is
// effectively full and the create must fail rather than hand out a duplicate.
const maxBarcodeAttempts = 5

type CatalogService interface {
	GetAllProducts() ([]model.Product, error)
	Resolve(ref string) (*model.Product, error)
	CreateProduct(req *CreateProductRequest, actorName string) (*model.Product, error)
	UpdateProduct(id uint, req *UpdateProductRequest, actorName string) (*model.Product, error)
	DeleteProduct(name string) error
	RecordPurchase(req *RecordPurchaseRequest, actorName string) (*model.Product, *model.Purchase, error)
	SuggestedPrice(productID uint, markupOverride *float64) (*SuggestedPriceResponse, error)
	GetAllPurchases() ([]model.Purchase, error)
	GetMarkupPercent() float64
	SetMarkupPercent(markup float64) error
}

type CreateProductRequest struct {
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Barcode  string  `json:"barcode"`
	StockQty int     `json:"stock_qty" validate:"gte=0"`
}

// UpdateProductRequest carries a partial update; nil fields stay untouched.
type UpdateProductRequest struct {
	Name     *string  `json:"name,omitempty"`
	Price    *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Barcode  *string  `json:"barcode,omitempty"`
	StockQty *int     `json:"stock_qty,omitempty" validate:"omitempty,gte=0"`
}

type RecordPurchaseRequest struct {
	ProductID     uint    `json:"product_id" validate:"required"`
	QtyAdded      int     `json:"qty_added"`
	PurchasePrice float64 `json:"purchase_price"`
}

type SuggestedPriceResponse struct {
	ProductID      uint    `json:"product_id"`
	WAC            float64 `json:"wac"`
	MarkupPercent  float64 `json:"markup_percent"`
	SuggestedPrice float64 `json:"suggested_price"`
}

type catalogService struct {
	productRepo  repository.ProductRepository
	purchaseRepo repository.PurchaseRepository
	ledgerRepo   repository.LedgerRepository
	settingRepo  repository.SettingRepository
	db           *gorm.DB
	wsHub        *ws.Hub
}

func NewCatalogService(
	pRepo repository.ProductRepository,
	purchRepo repository.PurchaseRepository,
	lRepo repository.LedgerRepository,
	sRepo repository.SettingRepository,
	db *gorm.DB,
	hub *ws.Hub,
) CatalogService {
	return &catalogService{
		productRepo:  pRepo,
		purchaseRepo: purchRepo,
		ledgerRepo:   lRepo,
		settingRepo:  sRepo,
		db:           db,
		wsHub:        hub,
	}
}

func (s *catalogService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

// resolveProductRef is the scan/search lookup chain: exact barcode first,
// then exact numeric id, then case-insensitive exact name. First match wins.
func resolveProductRef(repo repository.ProductRepository, ref string) (*model.Product, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrProductNotFound
	}

	if p, err := repo.FindByBarcode(ref); err == nil {
		return p, nil
	}

	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		if p, err := repo.FindByID(uint(id)); err == nil {
			return p, nil
		}
	}

	if p, err := repo.FindByNameFold(ref); err == nil {
		return p, nil
	}

	return nil, ErrProductNotFound
}

func (s *catalogService) Resolve(ref string) (*model.Product, error) {
	return resolveProductRef(s.productRepo, ref)
}

func (s *catalogService) CreateProduct(req *CreateProductRequest, actorName string) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Barcode = strings.TrimSpace(req.Barcode)

	// Duplicate name check is case-sensitive exact match.
	if existing, err := s.productRepo.FindByName(req.Name); err == nil && existing.ID != 0 {
		return nil, ErrDuplicateName
	}

	code := req.Barcode
	if code != "" {
		if existing, err := s.productRepo.FindByBarcode(code); err == nil && existing.ID != 0 {
			return nil, ErrDuplicateBarcode
		}
	} else {
		generated, err := s.generateBarcode()
		if err != nil {
			return nil, err
		}
		code = generated
	}

	product := &model.Product{
		Name:     req.Name,
		Price:    req.Price,
		Barcode:  code,
		StockQty: req.StockQty,
	}
	product.CreatedBy = actorName
	product.UpdatedBy = actorName

	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.broadcastStockUpdate("product_created", product, actorName)
	return product, nil
}

// generateBarcode allocates a fresh internal-use EAN-13, re-checking each
// candidate against existing codes before handing it out.
func (s *catalogService) generateBarcode() (string, error) {
	ref, err := s.nextProductRef()
	if err != nil {
		return "", err
	}
	for attempt := 0; attempt < maxBarcodeAttempts; attempt++ {
		code, err := barcode.Generate(ref)
		if err != nil {
			return "", err
		}
		if _, err := s.productRepo.FindByBarcode(code); errors.Is(err, gorm.ErrRecordNotFound) {
			return code, nil
		}
	}
	return "", ErrBarcodeExhausted
}

func (s *catalogService) nextProductRef() (uint, error) {
	var count int64
	if err := s.db.Model(&model.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return uint(count) + 1, nil
}

func (s *catalogService) UpdateProduct(id uint, req *UpdateProductRequest, actorName string) (*model.Product, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return nil, fmt.Errorf("validation failed: field '%s' failed on tag '%s'", firstErr.FailedField, firstErr.Tag)
	}

	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing model.Product
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			return ErrProductNotFound
		}

		oldStock := existing.StockQty

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			var other model.Product
			if err := tx.First(&other, "name = ? AND id <> ?", name, id).Error; err == nil {
				return ErrDuplicateName
			}
			existing.Name = name
		}
		if req.Barcode != nil {
			code := strings.TrimSpace(*req.Barcode)
			var other model.Product
			if err := tx.First(&other, "barcode = ? AND id <> ?", code, id).Error; err == nil {
				return ErrDuplicateBarcode
			}
			existing.Barcode = code
		}
		if req.Price != nil {
			// Takes effect for future checkouts only; committed lines keep
			// their captured price.
			existing.Price = *req.Price
		}
		if req.StockQty != nil {
			existing.StockQty = *req.StockQty
		}
		existing.UpdatedBy = actorName

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		updated = &existing

		if oldStock != existing.StockQty {
			s.broadcastStockUpdate("product_updated", updated, actorName)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteProduct blocks when any transaction line references the product so
// financial history stays resolvable.
func (s *catalogService) DeleteProduct(name string) error {
	product, err := s.productRepo.FindByName(name)
	if err != nil {
		return ErrProductNotFound
	}

	refs, err := s.ledgerRepo.CountLinesForProduct(product.ID)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrProductReferenced
	}

	return s.productRepo.Delete(product)
}

func (s *catalogService) RecordPurchase(req *RecordPurchaseRequest, actorName string) (*model.Product, *model.Purchase, error) {
	if req.QtyAdded <= 0 {
		return nil, nil, ErrInvalidQuantity
	}
	if req.PurchasePrice < 0 {
		return nil, nil, ErrInvalidPrice
	}

	product, err := s.productRepo.FindByID(req.ProductID)
	if err != nil {
		return nil, nil, ErrProductNotFound
	}

	purchase := &model.Purchase{
		ProductID:     product.ID,
		QtyAdded:      req.QtyAdded,
		PurchasePrice: req.PurchasePrice,
	}

	// Purchase commit is atomic: the restock row and the stock increment land
	// together or not at all.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.purchaseRepo.Create(tx, purchase); err != nil {
			return err
		}
		return s.productRepo.IncrementStock(tx, product.ID, req.QtyAdded, actorName)
	})
	if err != nil {
		return nil, nil, err
	}

	refreshed, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, nil, err
	}

	s.broadcastStockUpdate("purchase_recorded", refreshed, actorName)
	return refreshed, purchase, nil
}

// SuggestedPrice derives wac * (1 + markup/100) from the purchase history.
// With no purchases on record the current sale price stands in for the WAC.
func (s *catalogService) SuggestedPrice(productID uint, markupOverride *float64) (*SuggestedPriceResponse, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return nil, ErrProductNotFound
	}

	qty, cost, err := s.purchaseRepo.BasisForProduct(productID)
	if err != nil {
		return nil, err
	}

	wac := product.Price
	if qty > 0 {
		wac = cost / float64(qty)
	}

	markup := s.GetMarkupPercent()
	if markupOverride != nil {
		markup = *markupOverride
	}

	return &SuggestedPriceResponse{
		ProductID:      productID,
		WAC:            round4(wac),
		MarkupPercent:  markup,
		SuggestedPrice: round2(wac * (1 + markup/100)),
	}, nil
}

func (s *catalogService) GetAllPurchases() ([]model.Purchase, error) {
	return s.purchaseRepo.FindAll()
}

func (s *catalogService) GetMarkupPercent() float64 {
	return s.settingRepo.GetFloat(model.SettingMarkupPercent, model.DefaultMarkupPercent)
}

func (s *catalogService) SetMarkupPercent(markup float64) error {
	return s.settingRepo.Set(model.SettingMarkupPercent, strconv.FormatFloat(markup, 'f', -1, 64))
}

func (s *catalogService) broadcastStockUpdate(action string, product *model.Product, actorName string) {
	if s.wsHub == nil {
		return
	}
	go s.wsHub.BroadcastJSON(map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"product": map[string]interface{}{
			"id":        product.ID,
			"name":      product.Name,
			"barcode":   product.Barcode,
			"price":     product.Price,
			"stock_qty": product.StockQty,
		},
		"user":    actorName,
		"message": fmt.Sprintf("%s: %s '%s'", actorName, action, product.Name),
	})
}
