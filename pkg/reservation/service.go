// Package reservation implements the reservation ledger and its
// approval state machine.
package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"aginventory/pkg/models"
	"aginventory/pkg/validators"
)

// ErrNotFound is returned when a reservation is missing so handlers can respond with 404.
var ErrNotFound = errors.New("reservation not found")

// ErrValidation wraps form-rule failures; the wrapped message is safe
// to show to the user.
var ErrValidation = errors.New("validation failed")

// EditPolicy decides what an edit does to the approval flag. A
// member-initiated edit sends the reservation back for re-approval, an
// admin-initiated edit does not.
type EditPolicy int

const (
	EditSelfService EditPolicy = iota
	EditAdmin
)

// Notifier delivers a notification email. Production wires the SMTP
// mailer here; tests substitute a recording fake.
type Notifier interface {
	Send(to, subject, html string) error
}

// Service owns the reservation ledger.
type Service struct {
	db       *gorm.DB
	notifier Notifier
}

func NewService(db *gorm.DB, notifier Notifier) *Service {
	return &Service{db: db, notifier: notifier}
}

// Create adds a reservation for the item on behalf of the brother.
// The reserving brother's display name and the item name are stored as
// snapshots. New reservations always start unapproved.
func (s *Service) Create(reason string, from, to time.Time, item models.Item, brother models.Brother) (models.Reservation, error) {
	if err := validateDates(reason, from, to); err != nil {
		return models.Reservation{}, err
	}
	res := models.Reservation{
		Reason:     reason,
		FromDate:   from,
		ToDate:     to,
		ReservedBy: brother.FullName(),
		ItemName:   item.Name,
		Approved:   false,
		BrotherID:  brother.ID,
		ItemID:     item.ID,
	}
	if err := s.db.Create(&res).Error; err != nil {
		return models.Reservation{}, err
	}
	return res, nil
}

// Edit updates reason and dates. Under EditSelfService the approval is
// reset and the reservation must be re-approved; under EditAdmin it is
// left untouched.
func (s *Service) Edit(id uint, reason string, from, to time.Time, policy EditPolicy) (models.Reservation, error) {
	res, err := s.Get(id)
	if err != nil {
		return models.Reservation{}, err
	}
	if err := validateDates(reason, from, to); err != nil {
		return models.Reservation{}, err
	}
	res.Reason = reason
	res.FromDate = from
	res.ToDate = to
	if policy == EditSelfService {
		res.Approved = false
	}
	if err := s.db.Save(&res).Error; err != nil {
		return models.Reservation{}, err
	}
	return res, nil
}

// Approve marks the reservation approved and mails the owning brother.
// The notification is sent on every call, approved or not already.
func (s *Service) Approve(id uint) (models.Reservation, error) {
	return s.setApproved(id, true, "approved")
}

// Revoke withdraws approval and mails the owning brother.
func (s *Service) Revoke(id uint) (models.Reservation, error) {
	return s.setApproved(id, false, "revoked")
}

func (s *Service) setApproved(id uint, approved bool, verb string) (models.Reservation, error) {
	res, err := s.Get(id)
	if err != nil {
		return models.Reservation{}, err
	}
	res.Approved = approved
	if err := s.db.Save(&res).Error; err != nil {
		return models.Reservation{}, err
	}

	var brother models.Brother
	if err := s.db.First(&brother, res.BrotherID).Error; err != nil {
		return res, fmt.Errorf("reserving brother lookup failed: %w", err)
	}
	subject := fmt.Sprintf("Your Reservation for %s", res.ItemName)
	html := fmt.Sprintf("<p>Your reservation for the %s has been %s.</p>", res.ItemName, verb)
	if err := s.notifier.Send(brother.Email, subject, html); err != nil {
		return res, fmt.Errorf("notification failed: %w", err)
	}
	return res, nil
}

// Delete removes the reservation permanently.
func (s *Service) Delete(id uint) error {
	res, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(&res).Error
}

// RemoveBrother deletes the brother together with every reservation
// they own, in one transaction, and reports how many reservations
// went. The cascade is explicit, not database-enforced; either both
// deletes commit or neither does.
func (s *Service) RemoveBrother(brotherID uint) (int64, error) {
	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("brother_id = ?", brotherID).Delete(&models.Reservation{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		owner := tx.Delete(&models.Brother{}, brotherID)
		if owner.Error != nil {
			return owner.Error
		}
		if owner.RowsAffected == 0 {
			return fmt.Errorf("brother %d: %w", brotherID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *Service) Get(id uint) (models.Reservation, error) {
	var res models.Reservation
	if err := s.db.First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Reservation{}, ErrNotFound
		}
		return models.Reservation{}, err
	}
	return res, nil
}

func (s *Service) List() ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Find(&reservations).Error
	return reservations, err
}

func (s *Service) ListByItem(itemID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Where("item_id = ?", itemID).Find(&reservations).Error
	return reservations, err
}

func (s *Service) ListByBrother(brotherID uint) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.db.Where("brother_id = ?", brotherID).Find(&reservations).Error
	return reservations, err
}

// validateDates enforces the date-range invariant: both dates today or
// later, and the return date not before the start date.
func validateDates(reason string, from, to time.Time) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: reason is required", ErrValidation)
	}
	today := validators.Today()
	if err := today.Validate(from); err != nil {
		return fmt.Errorf("%w: from date: %s", ErrValidation, err)
	}
	if err := today.Validate(to); err != nil {
		return fmt.Errorf("%w: to date: %s", ErrValidation, err)
	}
	if err := validators.After(from).Validate(to); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err)
	}
	return nil
}
