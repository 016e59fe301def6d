package invoice_test

import (
	"context"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/rpggio/crmdesk/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInvoiceService_CreateComputesTotal(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InvoiceRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	svc := invoice.NewService(repo, nil, nil, nil)
	inv, err := svc.Create(ctx, invoice.CreateRequest{
		ClientID: "CLI001",
		Items: []invoice.ItemRequest{
			{Description: "Design", Quantity: 10, UnitPrice: 85.5},
			{Description: "Hosting", Quantity: 1, UnitPrice: 19.99},
		},
	})
	require.NoError(t, err)
	require.Equal(t, invoice.StatusDraft, inv.Status)
	require.NotEmpty(t, inv.IssueDate)
	require.Equal(t, 874.99, inv.Total)
	require.Equal(t, 1, inv.Items[1].Position)
}

func TestInvoiceService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := invoice.NewService(&mocks.InvoiceRepository{}, nil, nil, nil)

	cases := map[string]invoice.CreateRequest{
		"missing client": {},
		"bad issue date": {ClientID: "CLI001", IssueDate: "yesterday"},
		"due before":     {ClientID: "CLI001", IssueDate: "2024-03-10", DueDate: "2024-03-01"},
		"zero quantity":  {ClientID: "CLI001", Items: []invoice.ItemRequest{{Description: "x", Quantity: 0, UnitPrice: 1}}},
		"no description": {ClientID: "CLI001", Items: []invoice.ItemRequest{{Quantity: 1, UnitPrice: 1}}},
		"amount overflow": {ClientID: "CLI001", Items: []invoice.ItemRequest{
			{Description: "x", Quantity: 1e200, UnitPrice: 1e200},
		}},
		"total overflow": {ClientID: "CLI001", Items: []invoice.ItemRequest{
			{Description: "x", Quantity: 1, UnitPrice: 1e306},
			{Description: "y", Quantity: 1, UnitPrice: 1e306},
		}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, req)
			require.ErrorIs(t, err, invoice.ErrInvalidInput)
		})
	}
}

func TestInvoiceService_AddItemOverflow(t *testing.T) {
	repo := &mocks.InvoiceRepository{}
	svc := invoice.NewService(repo, nil, nil, nil)

	_, err := svc.AddItem(context.Background(), "INV001", invoice.ItemRequest{Description: "x", Quantity: 1e200, UnitPrice: 1e200})
	require.ErrorIs(t, err, invoice.ErrInvalidInput)
	repo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything)
}

func TestInvoiceService_StatusTransitions(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InvoiceRepository{}
	repo.On("Get", ctx, "INV001").Return(&invoice.Invoice{ID: "INV001", ClientID: "CLI001", Status: invoice.StatusDraft, IssueDate: "2024-03-01"}, nil).Once()
	repo.On("Get", ctx, "INV001").Return(&invoice.Invoice{ID: "INV001", ClientID: "CLI001", Status: invoice.StatusPaid, IssueDate: "2024-03-01"}, nil).Once()
	repo.On("Update", ctx, mock.AnythingOfType("*invoice.Invoice")).Return(nil)

	svc := invoice.NewService(repo, nil, nil, nil)
	sent := invoice.StatusSent
	inv, err := svc.Update(ctx, "INV001", invoice.UpdateRequest{Status: &sent})
	require.NoError(t, err)
	require.Equal(t, invoice.StatusSent, inv.Status)

	cancelled := invoice.StatusCancelled
	_, err = svc.Update(ctx, "INV001", invoice.UpdateRequest{Status: &cancelled})
	require.ErrorIs(t, err, invoice.ErrInvalidTransition)
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestInvoiceService_AddItemLocked(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InvoiceRepository{}
	repo.On("AddItem", ctx, mock.AnythingOfType("*invoice.Item")).Return((*invoice.Invoice)(nil), invoice.ErrInvoiceLocked)

	svc := invoice.NewService(repo, nil, nil, nil)
	_, err := svc.AddItem(ctx, "INV001", invoice.ItemRequest{Description: "Extra", Quantity: 1, UnitPrice: 10})
	require.ErrorIs(t, err, invoice.ErrInvoiceLocked)
}

func TestInvoiceService_DeleteItemNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.InvoiceRepository{}
	repo.On("DeleteItem", ctx, "INV001", "ITM404").Return((*invoice.Invoice)(nil), repository.ErrNotFound)

	svc := invoice.NewService(repo, nil, nil, nil)
	_, err := svc.DeleteItem(ctx, "INV001", "ITM404")
	require.ErrorIs(t, err, invoice.ErrItemNotFound)
}
