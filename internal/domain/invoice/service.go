package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/repository"
)

const dateLayout = "2006-01-02"

// Service handles invoice operations.
type Service struct {
	repo     Repository
	refs     reference.Validator
	activity activity.Recorder
	logger   *slog.Logger
}

// NewService creates a new invoice service.
func NewService(repo Repository, refs reference.Validator, recorder activity.Recorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, refs: refs, activity: recorder, logger: logger}
}

// Create validates and stores a new draft invoice with its items.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	now := time.Now().UTC()
	inv := &Invoice{
		ClientID:  strings.TrimSpace(req.ClientID),
		ProjectID: optionalID(req.ProjectID),
		JumpID:    optionalID(req.JumpID),
		Status:    StatusDraft,
		IssueDate: strings.TrimSpace(req.IssueDate),
		DueDate:   strings.TrimSpace(req.DueDate),
		Notes:     req.Notes,
		Items:     make([]Item, 0, len(req.Items)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if inv.IssueDate == "" {
		inv.IssueDate = now.Format(dateLayout)
	}
	if inv.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id is required", ErrInvalidInput)
	}
	if err := validateDates(inv); err != nil {
		return nil, err
	}
	for i, r := range req.Items {
		item, err := newItem(r, i, now)
		if err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, *item)
	}
	if err := inv.ComputeTotal(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}
	summary := fmt.Sprintf("created invoice for %s totaling %.2f", inv.ClientID, inv.Total)
	activity.Record(ctx, s.activity, s.logger, activity.EntityInvoice, inv.ID, activity.ActionCreated, summary)
	return inv, nil
}

// Get fetches an invoice with its items.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err, id, "getting invoice")
	}
	return inv, nil
}

// List returns invoices matching opts without their items.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Invoice, error) {
	return s.repo.List(ctx, opts)
}

// Update applies the non-nil fields of req. Status changes follow the
// draft, sent, overdue, paid lifecycle; paid and cancelled are terminal.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Invoice, error) {
	inv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := inv.Status
	if req.Status != nil {
		if err := reference.Check(ctx, s.refs, reference.CategoryInvoiceStatus, *req.Status); err != nil {
			return nil, err
		}
		if !CanTransition(inv.Status, *req.Status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, inv.Status, *req.Status)
		}
		inv.Status = *req.Status
	}
	if req.IssueDate != nil {
		inv.IssueDate = strings.TrimSpace(*req.IssueDate)
	}
	if req.DueDate != nil {
		inv.DueDate = strings.TrimSpace(*req.DueDate)
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}
	if err := validateDates(inv); err != nil {
		return nil, err
	}
	inv.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, inv); err != nil {
		return nil, mapErr(err, id, "updating invoice")
	}
	summary := "updated invoice " + inv.ID
	if inv.Status != previous {
		summary = fmt.Sprintf("invoice %s %s to %s", inv.ID, previous, inv.Status)
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityInvoice, inv.ID, activity.ActionUpdated, summary)
	return inv, nil
}

// Delete removes an invoice and its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapErr(err, id, "deleting invoice")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityInvoice, id, activity.ActionDeleted, "deleted invoice "+id)
	return nil
}

// AddItem appends a line to a draft invoice.
func (s *Service) AddItem(ctx context.Context, invoiceID string, req ItemRequest) (*Invoice, error) {
	item, err := newItem(req, 0, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	item.InvoiceID = invoiceID

	inv, err := s.repo.AddItem(ctx, item)
	if err != nil {
		return nil, mapErr(err, invoiceID, "adding invoice item")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityInvoice, invoiceID, activity.ActionUpdated, "added item "+item.Description)
	return inv, nil
}

// DeleteItem removes a line from a draft invoice.
func (s *Service) DeleteItem(ctx context.Context, invoiceID, itemID string) (*Invoice, error) {
	inv, err := s.repo.DeleteItem(ctx, invoiceID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		return nil, mapErr(err, invoiceID, "deleting invoice item")
	}
	activity.Record(ctx, s.activity, s.logger, activity.EntityInvoice, invoiceID, activity.ActionUpdated, "removed item "+itemID)
	return inv, nil
}

// ListItems returns an invoice's items in position order.
func (s *Service) ListItems(ctx context.Context, invoiceID string) ([]Item, error) {
	if _, err := s.Get(ctx, invoiceID); err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, invoiceID)
}

func newItem(req ItemRequest, position int, now time.Time) (*Item, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: item description is required", ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: item quantity must be positive", ErrInvalidInput)
	}
	if req.UnitPrice < 0 {
		return nil, fmt.Errorf("%w: item unit_price must not be negative", ErrInvalidInput)
	}
	amount, err := ItemAmount(req.Quantity, req.UnitPrice)
	if err != nil {
		return nil, err
	}
	return &Item{
		Description: description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		Amount:      amount,
		Position:    position,
		CreatedAt:   now,
	}, nil
}

func validateDates(inv *Invoice) error {
	if inv.IssueDate == "" {
		return fmt.Errorf("%w: issue_date is required", ErrInvalidInput)
	}
	if _, err := time.Parse(dateLayout, inv.IssueDate); err != nil {
		return fmt.Errorf("%w: issue_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if inv.DueDate == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, inv.DueDate); err != nil {
		return fmt.Errorf("%w: due_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	if inv.DueDate < inv.IssueDate {
		return fmt.Errorf("%w: due_date is before issue_date", ErrInvalidInput)
	}
	return nil
}

func optionalID(id string) *string {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return &id
}

func mapErr(err error, id, action string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}
	if errors.Is(err, ErrInvoiceLocked) {
		return err
	}
	return fmt.Errorf("%s: %w", action, err)
}
