package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/catering-app/internal/models"
)

var (
	ErrItemNotFound      = errors.New("inventory_item_not_found")
	ErrInvalidMovement   = errors.New("invalid_movement")
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrDuplicateItemName = errors.New("duplicate_item_name")
)

// InventoryService manages stock items and their append-only movement log.
type InventoryService struct{ DB *gorm.DB }

func NewInventoryService(db *gorm.DB) *InventoryService { return &InventoryService{DB: db} }

func (s *InventoryService) CreateItem(name, unit string, quantity, reorderLevel float64) (*models.InventoryItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidMovement
	}
	if unit == "" {
		unit = "kg"
	}
	var count int64
	if err := s.DB.Model(&models.InventoryItem{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateItemName
	}
	item := models.InventoryItem{Name: name, Unit: unit, Quantity: quantity, ReorderLevel: reorderLevel}
	if err := s.DB.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &item, nil
}

func (s *InventoryService) ListItems() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.DB.Order("name asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// LowStock returns items at or below their reorder level.
func (s *InventoryService) LowStock() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.DB.Where("quantity <= reorder_level").Order("name asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return items, nil
}

// Move records a stock movement and applies it to the item quantity in one
// transaction. "in" adds, "out" subtracts (never below zero), "adjust" sets
// the quantity to the given value.
func (s *InventoryService) Move(itemID uint, movType string, quantity float64, note string, userID uint) (*models.InventoryItem, error) {
	if movType != models.MovementIn && movType != models.MovementOut && movType != models.MovementAdjust {
		return nil, ErrInvalidMovement
	}
	if quantity < 0 || (movType != models.MovementAdjust && quantity == 0) {
		return nil, ErrInvalidMovement
	}
	var item models.InventoryItem
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}
		var delta float64
		switch movType {
		case models.MovementIn:
			delta = quantity
		case models.MovementOut:
			if quantity > item.Quantity {
				return ErrInsufficientStock
			}
			delta = -quantity
		case models.MovementAdjust:
			delta = quantity - item.Quantity
		}
		mov := models.StockMovement{ItemID: item.ID, Type: movType, Quantity: delta, Note: note, UserID: userID}
		if err := tx.Create(&mov).Error; err != nil {
			return err
		}
		item.Quantity += delta
		return tx.Model(&models.InventoryItem{}).Where("id = ?", item.ID).Update("quantity", item.Quantity).Error
	})
	if err != nil {
		if errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrInsufficientStock) {
			return nil, err
		}
		return nil, fmt.Errorf("stock movement: %w", err)
	}
	return &item, nil
}

// Movements returns the movement history for one item, newest first.
func (s *InventoryService) Movements(itemID uint) ([]models.StockMovement, error) {
	var count int64
	if err := s.DB.Model(&models.InventoryItem{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("movements: %w", err)
	}
	if count == 0 {
		return nil, ErrItemNotFound
	}
	var movs []models.StockMovement
	if err := s.DB.Where("item_id = ?", itemID).Order("id desc").Find(&movs).Error; err != nil {
		return nil, fmt.Errorf("movements: %w", err)
	}
	return movs, nil
}
