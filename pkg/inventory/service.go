// Package inventory implements the item registry and the storage
// location hierarchy (unit -> shelf -> container -> item).
package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"aginventory/pkg/models"
)

// Service runs all registry and hierarchy operations against the
// relational store.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// CreateItem adds a new item, optionally placed in a unit.
func (s *Service) CreateItem(name, description string, unitID *uint, quantity int) (models.Item, error) {
	if err := s.checkItemName(name, 0); err != nil {
		return models.Item{}, err
	}
	item := models.Item{
		Name:        name,
		Description: description,
		Quantity:    quantity,
		UnitID:      unitID,
	}
	if err := s.db.Create(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Item{}, fmt.Errorf("item name already exists: %w", ErrDuplicateName)
		}
		return models.Item{}, err
	}
	return item, nil
}

// EditItem updates an item. Moving the item to a different unit clears
// its shelf: an item cannot stay on a shelf that belongs to the old
// unit.
func (s *Service) EditItem(id uint, name, description string, unitID *uint, quantity int) (models.Item, error) {
	item, err := s.GetItem(id)
	if err != nil {
		return models.Item{}, err
	}
	if name != item.Name {
		if err := s.checkItemName(name, id); err != nil {
			return models.Item{}, err
		}
	}
	oldUnit := item.UnitID
	item.Name = name
	item.Description = description
	item.Quantity = quantity
	item.UnitID = unitID
	if !sameID(oldUnit, unitID) {
		item.ShelfID = nil
	}
	if err := s.db.Save(&item).Error; err != nil {
		return models.Item{}, err
	}
	return item, nil
}

func (s *Service) DeleteItem(id uint) error {
	item, err := s.GetItem(id)
	if err != nil {
		return err
	}
	return s.db.Delete(&item).Error
}

// AssignUnit places the item in a unit.
func (s *Service) AssignUnit(itemID, unitID uint) (models.Item, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return models.Item{}, err
	}
	if err := s.requireAny(&models.Unit{}, "there are no units"); err != nil {
		return models.Item{}, err
	}
	var unit models.Unit
	if err := s.db.First(&unit, unitID).Error; err != nil {
		return models.Item{}, notFound(err, "unit")
	}
	if !sameID(item.UnitID, &unit.ID) {
		item.UnitID = &unit.ID
		item.ShelfID = nil
	}
	if err := s.db.Save(&item).Error; err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// AssignShelf places the item on a shelf of its unit. The unit must be
// set first.
func (s *Service) AssignShelf(itemID, shelfID uint) (models.Item, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return models.Item{}, err
	}
	if item.UnitID == nil {
		return models.Item{}, fmt.Errorf("please assign a unit to the item first: %w", ErrNoUnit)
	}
	shelves, err := s.ShelvesByUnit(*item.UnitID)
	if err != nil {
		return models.Item{}, err
	}
	if len(shelves) == 0 {
		return models.Item{}, fmt.Errorf("there are no shelves in this unit: %w", ErrNoCandidates)
	}
	for _, shelf := range shelves {
		if shelf.ID == shelfID {
			item.ShelfID = &shelf.ID
			if err := s.db.Save(&item).Error; err != nil {
				return models.Item{}, err
			}
			return item, nil
		}
	}
	return models.Item{}, fmt.Errorf("shelf is not in the item's unit: %w", ErrNoCandidates)
}

// AssignContainer puts the item into a container.
func (s *Service) AssignContainer(itemID, containerID uint) (models.Item, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return models.Item{}, err
	}
	if err := s.requireAny(&models.Container{}, "there are no containers"); err != nil {
		return models.Item{}, err
	}
	var container models.Container
	if err := s.db.First(&container, containerID).Error; err != nil {
		return models.Item{}, notFound(err, "container")
	}
	item.ContainerID = &container.ID
	if err := s.db.Save(&item).Error; err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// RemoveFromContainer clears the item's container assignment.
func (s *Service) RemoveFromContainer(itemID uint) (models.Item, error) {
	item, err := s.GetItem(itemID)
	if err != nil {
		return models.Item{}, err
	}
	if item.ContainerID == nil {
		return models.Item{}, fmt.Errorf("item has no container to remove: %w", ErrNoContainer)
	}
	item.ContainerID = nil
	if err := s.db.Save(&item).Error; err != nil {
		return models.Item{}, err
	}
	return item, nil
}

func (s *Service) GetItem(id uint) (models.Item, error) {
	var item models.Item
	if err := s.db.First(&item, id).Error; err != nil {
		return models.Item{}, notFound(err, "item")
	}
	return item, nil
}

func (s *Service) Items() ([]models.Item, error) {
	var items []models.Item
	err := s.db.Find(&items).Error
	return items, err
}

func (s *Service) ItemsByUnit(unitID uint) ([]models.Item, error) {
	var items []models.Item
	err := s.db.Where("unit_id = ?", unitID).Find(&items).Error
	return items, err
}

func (s *Service) ItemsByShelf(shelfID uint) ([]models.Item, error) {
	var items []models.Item
	err := s.db.Where("shelf_id = ?", shelfID).Find(&items).Error
	return items, err
}

func (s *Service) ItemsByContainer(containerID uint) ([]models.Item, error) {
	var items []models.Item
	err := s.db.Where("container_id = ?", containerID).Find(&items).Error
	return items, err
}

// CreateUnit adds a top-level storage unit.
func (s *Service) CreateUnit(name, location string) (models.Unit, error) {
	var count int64
	if err := s.db.Model(&models.Unit{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return models.Unit{}, err
	}
	if count > 0 {
		return models.Unit{}, fmt.Errorf("unit name already exists: %w", ErrDuplicateName)
	}
	unit := models.Unit{Name: name, Location: location}
	if err := s.db.Create(&unit).Error; err != nil {
		return models.Unit{}, err
	}
	return unit, nil
}

func (s *Service) EditUnit(id uint, name, location string) (models.Unit, error) {
	var unit models.Unit
	if err := s.db.First(&unit, id).Error; err != nil {
		return models.Unit{}, notFound(err, "unit")
	}
	unit.Name = name
	unit.Location = location
	if err := s.db.Save(&unit).Error; err != nil {
		return models.Unit{}, err
	}
	return unit, nil
}

// DeleteUnit removes the unit and nulls every reference to it. Items
// of the unit also lose their shelf link, since their shelves no
// longer have a located unit.
func (s *Service) DeleteUnit(id uint) error {
	var unit models.Unit
	if err := s.db.First(&unit, id).Error; err != nil {
		return notFound(err, "unit")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where("unit_id = ?", id).
			Updates(map[string]interface{}{"unit_id": nil, "shelf_id": nil}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Shelf{}).Where("unit_id = ?", id).
			Update("unit_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Container{}).Where("unit_id = ?", id).
			Update("unit_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&unit).Error
	})
}

func (s *Service) Units() ([]models.Unit, error) {
	var units []models.Unit
	err := s.db.Find(&units).Error
	return units, err
}

// CreateShelf adds a shelf to a unit.
func (s *Service) CreateShelf(unitID uint, name string) (models.Shelf, error) {
	var unit models.Unit
	if err := s.db.First(&unit, unitID).Error; err != nil {
		return models.Shelf{}, notFound(err, "unit")
	}
	shelf := models.Shelf{Name: name, UnitID: &unit.ID}
	if err := s.db.Create(&shelf).Error; err != nil {
		return models.Shelf{}, err
	}
	return shelf, nil
}

func (s *Service) EditShelf(id uint, name string) (models.Shelf, error) {
	var shelf models.Shelf
	if err := s.db.First(&shelf, id).Error; err != nil {
		return models.Shelf{}, notFound(err, "shelf")
	}
	shelf.Name = name
	if err := s.db.Save(&shelf).Error; err != nil {
		return models.Shelf{}, err
	}
	return shelf, nil
}

// DeleteShelf removes the shelf and nulls item and container links to
// it.
func (s *Service) DeleteShelf(id uint) error {
	var shelf models.Shelf
	if err := s.db.First(&shelf, id).Error; err != nil {
		return notFound(err, "shelf")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where("shelf_id = ?", id).
			Update("shelf_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Container{}).Where("shelf_id = ?", id).
			Update("shelf_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&shelf).Error
	})
}

func (s *Service) ShelvesByUnit(unitID uint) ([]models.Shelf, error) {
	var shelves []models.Shelf
	err := s.db.Where("unit_id = ?", unitID).Find(&shelves).Error
	return shelves, err
}

// CreateContainer adds a container. When shelfID is set the container
// adopts the shelf's unit; otherwise an explicit unit may be given, or
// none for an unknown location.
func (s *Service) CreateContainer(name string, shelfID, unitID *uint) (models.Container, error) {
	container := models.Container{Name: name, UnitID: unitID}
	if shelfID != nil {
		var shelf models.Shelf
		if err := s.db.First(&shelf, *shelfID).Error; err != nil {
			return models.Container{}, notFound(err, "shelf")
		}
		container.ShelfID = &shelf.ID
		container.UnitID = shelf.UnitID
	}
	if err := s.db.Create(&container).Error; err != nil {
		return models.Container{}, err
	}
	return container, nil
}

func (s *Service) EditContainer(id uint, name string) (models.Container, error) {
	var container models.Container
	if err := s.db.First(&container, id).Error; err != nil {
		return models.Container{}, notFound(err, "container")
	}
	container.Name = name
	if err := s.db.Save(&container).Error; err != nil {
		return models.Container{}, err
	}
	return container, nil
}

// DeleteContainer removes the container and nulls item links to it.
func (s *Service) DeleteContainer(id uint) error {
	var container models.Container
	if err := s.db.First(&container, id).Error; err != nil {
		return notFound(err, "container")
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Item{}).Where("container_id = ?", id).
			Update("container_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&container).Error
	})
}

// AssignUnitToContainer places a container in a unit.
func (s *Service) AssignUnitToContainer(containerID, unitID uint) (models.Container, error) {
	var container models.Container
	if err := s.db.First(&container, containerID).Error; err != nil {
		return models.Container{}, notFound(err, "container")
	}
	if err := s.requireAny(&models.Unit{}, "there are no units"); err != nil {
		return models.Container{}, err
	}
	var unit models.Unit
	if err := s.db.First(&unit, unitID).Error; err != nil {
		return models.Container{}, notFound(err, "unit")
	}
	container.UnitID = &unit.ID
	if err := s.db.Save(&container).Error; err != nil {
		return models.Container{}, err
	}
	return container, nil
}

// AssignShelfToContainer places a container on a shelf of its unit.
// The unit must be set first, same rule as for items.
func (s *Service) AssignShelfToContainer(containerID, shelfID uint) (models.Container, error) {
	var container models.Container
	if err := s.db.First(&container, containerID).Error; err != nil {
		return models.Container{}, notFound(err, "container")
	}
	if container.UnitID == nil {
		return models.Container{}, fmt.Errorf("please assign a unit to the container first: %w", ErrNoUnit)
	}
	shelves, err := s.ShelvesByUnit(*container.UnitID)
	if err != nil {
		return models.Container{}, err
	}
	if len(shelves) == 0 {
		return models.Container{}, fmt.Errorf("there are no shelves in this unit: %w", ErrNoCandidates)
	}
	for _, shelf := range shelves {
		if shelf.ID == shelfID {
			container.ShelfID = &shelf.ID
			if err := s.db.Save(&container).Error; err != nil {
				return models.Container{}, err
			}
			return container, nil
		}
	}
	return models.Container{}, fmt.Errorf("shelf is not in the container's unit: %w", ErrNoCandidates)
}

func (s *Service) Containers() ([]models.Container, error) {
	var containers []models.Container
	err := s.db.Find(&containers).Error
	return containers, err
}

func (s *Service) ContainersByShelf(shelfID uint) ([]models.Container, error) {
	var containers []models.Container
	err := s.db.Where("shelf_id = ?", shelfID).Find(&containers).Error
	return containers, err
}

// Repair is the explicit maintenance pass for inconsistent shelf
// links. An item whose shelf is gone, or whose shelf has no unit, gets
// the shelf cleared; where the shelf does have a unit the item adopts
// it. This used to run as a side effect of list views; it is now only
// invoked on demand.
func (s *Service) Repair() (int, error) {
	var items []models.Item
	if err := s.db.Where("shelf_id IS NOT NULL").Find(&items).Error; err != nil {
		return 0, err
	}
	repaired := 0
	for i := range items {
		item := &items[i]
		var shelf models.Shelf
		err := s.db.First(&shelf, *item.ShelfID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item.ShelfID = nil
		case err != nil:
			return repaired, err
		case shelf.UnitID == nil:
			item.ShelfID = nil
		case item.UnitID == nil:
			item.UnitID = shelf.UnitID
		default:
			continue
		}
		if err := s.db.Save(item).Error; err != nil {
			return repaired, err
		}
		repaired++
	}
	return repaired, nil
}

// checkItemName enforces the unique-name invariant up front so the
// caller sees ErrDuplicateName instead of a driver-specific constraint
// failure.
func (s *Service) checkItemName(name string, excludeID uint) error {
	query := s.db.Model(&models.Item{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("item name already exists: %w", ErrDuplicateName)
	}
	return nil
}

// requireAny fails with ErrNoCandidates when no row of the given model
// exists.
func (s *Service) requireAny(model interface{}, message string) error {
	var count int64
	if err := s.db.Model(model).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", message, ErrNoCandidates)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

func sameID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
