package jump_test

import (
	"context"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/strlist"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/rpggio/crmdesk/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestJumpService_CreateCleansFeatures(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JumpRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*jump.Jump")).Return(nil)

	svc := jump.NewService(repo, nil, nil, nil)
	j, err := svc.Create(ctx, jump.CreateRequest{
		Name:     "Brand Sprint",
		Price:    1500,
		Features: []string{" logo ", "", "palette", "logo"},
	})
	require.NoError(t, err)
	require.Equal(t, strlist.List{"logo", "palette"}, j.Features)
	require.NotNil(t, j.Images)
	require.Equal(t, jump.DefaultStatus, j.Status)
}

func TestJumpService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := jump.NewService(&mocks.JumpRepository{}, nil, nil, nil)

	_, err := svc.Create(ctx, jump.CreateRequest{Name: ""})
	require.ErrorIs(t, err, jump.ErrInvalidInput)

	_, err = svc.Create(ctx, jump.CreateRequest{Name: "x", Price: -1})
	require.ErrorIs(t, err, repository.ErrInvalidInput)
}

func TestJumpService_SetClientsDeduplicates(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JumpRepository{}
	repo.On("Get", ctx, "JMP001").Return(&jump.Jump{ID: "JMP001"}, nil)
	repo.On("SetClients", ctx, "JMP001", []string{"CLI001", "CLI002"}).Return(nil)
	repo.On("ListClients", ctx, "JMP001").Return([]client.Client{{ID: "CLI001"}, {ID: "CLI002"}}, nil)

	svc := jump.NewService(repo, nil, nil, nil)
	clients, err := svc.SetClients(ctx, "JMP001", []string{"CLI001", "CLI002", "CLI001"})
	require.NoError(t, err)
	require.Len(t, clients, 2)
}

func TestJumpService_SetClientsMissingJump(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JumpRepository{}
	repo.On("Get", ctx, "JMP999").Return((*jump.Jump)(nil), repository.ErrNotFound)

	svc := jump.NewService(repo, nil, nil, nil)
	_, err := svc.SetClients(ctx, "JMP999", []string{"CLI001"})
	require.ErrorIs(t, err, jump.ErrJumpNotFound)
	repo.AssertNotCalled(t, "SetClients", mock.Anything, mock.Anything, mock.Anything)
}

func TestJumpService_LinkMissingClient(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JumpRepository{}
	repo.On("LinkClient", ctx, "JMP001", "CLI999").Return(repository.ErrMissingReference)

	svc := jump.NewService(repo, nil, nil, nil)
	err := svc.LinkClient(ctx, "JMP001", "CLI999")
	require.ErrorIs(t, err, repository.ErrMissingReference)

	err = svc.LinkClient(ctx, "JMP001", "")
	require.ErrorIs(t, err, jump.ErrInvalidInput)
}

func TestJumpService_AddImageNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.JumpRepository{}
	repo.On("AddImage", ctx, "JMP404", "a.png").Return((*jump.Jump)(nil), repository.ErrNotFound)

	svc := jump.NewService(repo, nil, nil, nil)
	_, err := svc.AddImage(ctx, "JMP404", "a.png")
	require.ErrorIs(t, err, jump.ErrJumpNotFound)
}
