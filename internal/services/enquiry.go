package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/diewo77/catering-app/internal/models"
)

var (
	ErrEnquiryNotFound = errors.New("enquiry_not_found")
	ErrMissingClient   = errors.New("missing_client_name")
	ErrNoDishes        = errors.New("empty_dish_list")
	ErrInvalidLine     = errors.New("invalid_line_item")
	ErrInvalidStatus   = errors.New("invalid_status")
)

type EnquiryDishInput struct {
	DishID    uint
	Quantity  int
	UnitPrice float64
}

type EnquiryServiceInput struct {
	Name        string
	Description string
	Price       float64
}

type CreateEnquiryInput struct {
	ClientName    string
	ClientContact string
	EventDate     time.Time
	Location      string
	GuestCount    int
	Dishes        []EnquiryDishInput
	Services      []EnquiryServiceInput
	UserID        uint // acting user, trusted as given (auth is the caller's concern)
}

// EnquiryService owns the enquiry lifecycle: creation with quotation
// numbering, status transitions with their audit trail, and the conversion
// of a successful enquiry into a billable event.
type EnquiryService struct{ DB *gorm.DB }

func NewEnquiryService(db *gorm.DB) *EnquiryService { return &EnquiryService{DB: db} }

// ComputeTotal returns the quoted total for the given lines:
// sum of dish quantity x unit price plus the flat service prices.
func ComputeTotal(dishes []EnquiryDishInput, services []EnquiryServiceInput) float64 {
	var total float64
	for _, d := range dishes {
		total += float64(d.Quantity) * d.UnitPrice
	}
	for _, s := range services {
		total += s.Price
	}
	return total
}

func validateCreate(in *CreateEnquiryInput) error {
	if strings.TrimSpace(in.ClientName) == "" {
		return ErrMissingClient
	}
	if len(in.Dishes) == 0 {
		return ErrNoDishes
	}
	for _, d := range in.Dishes {
		if d.DishID == 0 || d.Quantity <= 0 || d.UnitPrice < 0 {
			return ErrInvalidLine
		}
	}
	for _, s := range in.Services {
		if strings.TrimSpace(s.Name) == "" || s.Price < 0 {
			return ErrInvalidLine
		}
	}
	return nil
}

// Create persists the enquiry, its line items and the creation audit entry
// as one transaction. The quotation number comes from a per-year counter
// bumped inside the same transaction, so two concurrent creations can never
// collide on a number.
func (s *EnquiryService) Create(in CreateEnquiryInput) (*models.Enquiry, error) {
	if err := validateCreate(&in); err != nil {
		return nil, err
	}
	enq := models.Enquiry{
		ShareToken:    uuid.NewString(),
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientContact: strings.TrimSpace(in.ClientContact),
		EventDate:     in.EventDate,
		Location:      strings.TrimSpace(in.Location),
		GuestCount:    in.GuestCount,
		Status:        models.EnquiryPending,
		TotalAmount:   ComputeTotal(in.Dishes, in.Services),
		CreatedByID:   in.UserID,
	}
	for _, d := range in.Dishes {
		enq.Dishes = append(enq.Dishes, models.EnquiryDish{DishID: d.DishID, Quantity: d.Quantity, UnitPrice: d.UnitPrice})
	}
	for _, sv := range in.Services {
		enq.Services = append(enq.Services, models.EnquiryServiceItem{Name: strings.TrimSpace(sv.Name), Description: sv.Description, Price: sv.Price})
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		year := time.Now().Year()
		seq, err := NextSequence(tx, "quotation", year)
		if err != nil {
			return err
		}
		enq.QuotationNumber = fmt.Sprintf("QT-%d-%04d", year, seq)
		if err := tx.Create(&enq).Error; err != nil {
			return err
		}
		upd := models.EnquiryUpdate{
			EnquiryID:   enq.ID,
			Type:        models.UpdateStatusChange,
			Description: "enquiry created",
			NewValue:    models.EnquiryPending,
			UserID:      in.UserID,
		}
		return tx.Create(&upd).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	return &enq, nil
}

// transitionEffect is the side effect attached to entering a status.
type transitionEffect int

const (
	effectNone transitionEffect = iota
	effectConvert
)

// statusEffects is the explicit transition table: any status is reachable
// from any other; only SUCCESS carries a side effect.
var statusEffects = map[string]transitionEffect{
	models.EnquiryPending: effectNone,
	models.EnquirySuccess: effectConvert,
	models.EnquiryLost:    effectNone,
}

// ChangeStatus moves the enquiry to target and appends one audit entry, in
// one transaction. No-op transitions are still logged. Entering SUCCESS
// additionally converts the enquiry into an event inside the same
// transaction: if the event insert fails the status change rolls back, so
// an enquiry is SUCCESS iff a corresponding event exists. Returns the
// updated enquiry and the id of its event (zero unless target is SUCCESS).
func (s *EnquiryService) ChangeStatus(id uint, target string, userID uint) (*models.Enquiry, uint, error) {
	effect, ok := statusEffects[target]
	if !ok {
		return nil, 0, ErrInvalidStatus
	}
	var enq models.Enquiry
	var eventID uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Dishes").Preload("Services").First(&enq, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEnquiryNotFound
			}
			return err
		}
		old := enq.Status
		if err := tx.Model(&models.Enquiry{}).Where("id = ?", id).Update("status", target).Error; err != nil {
			return err
		}
		enq.Status = target
		upd := models.EnquiryUpdate{
			EnquiryID:   enq.ID,
			Type:        models.UpdateStatusChange,
			Description: fmt.Sprintf("status changed from %s to %s", old, target),
			OldValue:    old,
			NewValue:    target,
			UserID:      userID,
		}
		if err := tx.Create(&upd).Error; err != nil {
			return err
		}
		if effect == effectConvert {
			evID, err := convertToEvent(tx, &enq)
			if err != nil {
				return err
			}
			eventID = evID
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEnquiryNotFound) {
			return nil, 0, ErrEnquiryNotFound
		}
		return nil, 0, fmt.Errorf("change enquiry status: %w", err)
	}
	return &enq, eventID, nil
}

// convertToEvent creates the billable event for a successful enquiry,
// copying header fields and line items so later enquiry edits never reach
// the event. Conversion is idempotent per enquiry: re-entering SUCCESS
// returns the existing event instead of creating a second one.
func convertToEvent(tx *gorm.DB, enq *models.Enquiry) (uint, error) {
	var existing models.Event
	err := tx.Select("id").Where("enquiry_id = ?", enq.ID).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	ev := models.Event{
		Name:          enq.ClientName + " event",
		Status:        models.EventUpcoming,
		EnquiryID:     enq.ID,
		ClientName:    enq.ClientName,
		ClientContact: enq.ClientContact,
		EventDate:     enq.EventDate,
		Location:      enq.Location,
		GuestCount:    enq.GuestCount,
		TotalAmount:   enq.TotalAmount,
		PaidAmount:    0,
		BalanceAmount: enq.TotalAmount,
	}
	for _, d := range enq.Dishes {
		ev.Dishes = append(ev.Dishes, models.EventDish{DishID: d.DishID, Quantity: d.Quantity, UnitPrice: d.UnitPrice})
	}
	for _, sv := range enq.Services {
		ev.Services = append(ev.Services, models.EventServiceItem{Name: sv.Name, Description: sv.Description, Price: sv.Price})
	}
	if err := tx.Create(&ev).Error; err != nil {
		return 0, err
	}
	return ev.ID, nil
}

// AddNote appends a free-text note to the enquiry's audit trail.
func (s *EnquiryService) AddNote(id uint, note string, userID uint) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return ErrInvalidLine
	}
	var count int64
	if err := s.DB.Model(&models.Enquiry{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	if count == 0 {
		return ErrEnquiryNotFound
	}
	upd := models.EnquiryUpdate{EnquiryID: id, Type: models.UpdateNote, Description: note, UserID: userID}
	if err := s.DB.Create(&upd).Error; err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	return nil
}

// recentUpdates is how many audit entries list views carry per enquiry.
const recentUpdates = 5

// List returns enquiries newest-first with their lines, creator and last
// few audit entries, optionally filtered by status.
func (s *EnquiryService) List(status string) ([]models.Enquiry, error) {
	q := s.DB.
		Preload("Dishes.Dish").
		Preload("Services").
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("enquiry_updates.id DESC") }).
		Preload("CreatedBy").
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Enquiry
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	// GORM's preload Limit is global, not per parent; trim in memory instead.
	for i := range out {
		if len(out[i].Updates) > recentUpdates {
			out[i].Updates = out[i].Updates[:recentUpdates]
		}
	}
	return out, nil
}

// Get fetches one enquiry with its full audit history, plus its converted
// event if the enquiry was ever successful.
func (s *EnquiryService) Get(id uint) (*models.Enquiry, *models.Event, error) {
	var enq models.Enquiry
	err := s.DB.
		Preload("Dishes.Dish").
		Preload("Services").
		Preload("Updates", func(db *gorm.DB) *gorm.DB { return db.Order("enquiry_updates.id ASC") }).
		Preload("Updates.User").
		Preload("CreatedBy").
		First(&enq, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrEnquiryNotFound
		}
		return nil, nil, fmt.Errorf("get enquiry: %w", err)
	}
	var ev models.Event
	err = s.DB.Where("enquiry_id = ?", enq.ID).First(&ev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &enq, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get enquiry event: %w", err)
	}
	return &enq, &ev, nil
}

// GetByShareToken resolves the public quotation link.
func (s *EnquiryService) GetByShareToken(token string) (*models.Enquiry, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrEnquiryNotFound
	}
	var enq models.Enquiry
	err := s.DB.
		Preload("Dishes.Dish").
		Preload("Services").
		Where("share_token = ?", token).
		First(&enq).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnquiryNotFound
		}
		return nil, fmt.Errorf("get enquiry by token: %w", err)
	}
	return &enq, nil
}
