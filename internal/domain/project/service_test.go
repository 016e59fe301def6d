package project_test

import (
	"context"
	"testing"

	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/repository"
	"github.com/rpggio/crmdesk/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newService(repo *mocks.ProjectRepository, tasks *mocks.TaskRepository) *project.Service {
	return project.NewService(repo, tasks, nil, nil, nil)
}

func TestProjectService_CreateDefaults(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.AnythingOfType("*project.Project")).
		Run(func(args mock.Arguments) { args.Get(1).(*project.Project).ID = "PRJ001" }).
		Return(nil)

	svc := newService(repo, nil)
	p, err := svc.Create(ctx, project.CreateRequest{ClientID: "CLI001", Name: "Site rebuild", JumpID: " "})
	require.NoError(t, err)
	require.Equal(t, "PRJ001", p.ID)
	require.Equal(t, project.DefaultStatus, p.Status)
	require.Nil(t, p.JumpID)
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(&mocks.ProjectRepository{}, nil)

	cases := map[string]project.CreateRequest{
		"missing client": {Name: "x"},
		"missing name":   {ClientID: "CLI001"},
		"bad date":       {ClientID: "CLI001", Name: "x", StartDate: "03/01/2024"},
		"reversed dates": {ClientID: "CLI001", Name: "x", StartDate: "2024-03-01", EndDate: "2024-02-01"},
		"negative":       {ClientID: "CLI001", Name: "x", Budget: -1},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, req)
			require.ErrorIs(t, err, project.ErrInvalidInput)
		})
	}
}

func TestProjectService_CreateMissingClient(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrMissingReference)

	svc := newService(repo, nil)
	_, err := svc.Create(ctx, project.CreateRequest{ClientID: "CLI009", Name: "x"})
	require.ErrorIs(t, err, repository.ErrMissingReference)
}

func TestProjectService_UpdateDetachesJump(t *testing.T) {
	ctx := context.Background()
	jumpID := "JMP001"
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "PRJ001").Return(&project.Project{ID: "PRJ001", ClientID: "CLI001", Name: "x", Status: "planned", JumpID: &jumpID}, nil)
	repo.On("Update", ctx, mock.AnythingOfType("*project.Project")).Return(nil)

	empty := ""
	svc := newService(repo, nil)
	p, err := svc.Update(ctx, "PRJ001", project.UpdateRequest{JumpID: &empty})
	require.NoError(t, err)
	require.Nil(t, p.JumpID)
}

func TestProjectService_SetCopilotsDeduplicates(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "PRJ001").Return(&project.Project{ID: "PRJ001"}, nil)
	repo.On("SetCopilots", ctx, "PRJ001", []project.AssignmentRequest{
		{CopilotID: "COP001", Role: "lead"},
		{CopilotID: "COP002", Role: ""},
	}).Return(nil)
	repo.On("ListCopilots", ctx, "PRJ001").Return([]project.Assignment{}, nil)

	svc := newService(repo, nil)
	_, err := svc.SetCopilots(ctx, "PRJ001", []project.AssignmentRequest{
		{CopilotID: "COP001", Role: "dev"},
		{CopilotID: "COP002"},
		{CopilotID: " COP001 ", Role: "lead"},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestProjectService_SetCopilotsMissingProject(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProjectRepository{}
	repo.On("Get", ctx, "PRJ999").Return((*project.Project)(nil), repository.ErrNotFound)

	svc := newService(repo, nil)
	_, err := svc.SetCopilots(ctx, "PRJ999", []project.AssignmentRequest{{CopilotID: "COP001"}})
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	repo.AssertNotCalled(t, "SetCopilots", mock.Anything, mock.Anything, mock.Anything)
}

func TestProjectService_AssignCopilotRequiresID(t *testing.T) {
	svc := newService(&mocks.ProjectRepository{}, nil)
	err := svc.AssignCopilot(context.Background(), "PRJ001", project.AssignmentRequest{})
	require.ErrorIs(t, err, project.ErrInvalidInput)
}

func TestProjectService_Tasks(t *testing.T) {
	ctx := context.Background()
	tasks := &mocks.TaskRepository{}
	tasks.On("Create", ctx, mock.AnythingOfType("*project.Task")).Return(nil)
	tasks.On("Get", ctx, "TSK404").Return((*project.Task)(nil), repository.ErrNotFound)

	svc := newService(&mocks.ProjectRepository{}, tasks)

	_, err := svc.CreateTask(ctx, project.TaskRequest{Title: "Wireframes"})
	require.ErrorIs(t, err, project.ErrInvalidInput)

	task, err := svc.CreateTask(ctx, project.TaskRequest{ProjectID: "PRJ001", Title: "Wireframes", DueDate: "2024-05-01"})
	require.NoError(t, err)
	require.Equal(t, project.DefaultTaskStatus, task.Status)

	_, err = svc.GetTask(ctx, "TSK404")
	require.ErrorIs(t, err, project.ErrTaskNotFound)
}
