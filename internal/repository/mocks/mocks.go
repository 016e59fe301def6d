package mocks

import (
	"context"
	"time"

	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/stretchr/testify/mock"
)

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRecorder is a mock for activity.Recorder.
type ActivityRecorder struct {
	mock.Mock
}

func (m *ActivityRecorder) LogActivity(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// ReferenceRepository is a mock for reference.Repository.
type ReferenceRepository struct {
	mock.Mock
}

func (m *ReferenceRepository) List(ctx context.Context, category reference.Category) ([]reference.Value, error) {
	args := m.Called(ctx, category)
	if list, ok := args.Get(0).([]reference.Value); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReferenceRepository) Categories(ctx context.Context) ([]reference.Category, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]reference.Category); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReferenceRepository) Add(ctx context.Context, v *reference.Value) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// ReferenceValidator is a mock for reference.Validator.
type ReferenceValidator struct {
	mock.Mock
}

func (m *ReferenceValidator) Validate(ctx context.Context, category reference.Category, value string) error {
	args := m.Called(ctx, category, value)
	return args.Error(0)
}

// ClientRepository is a mock for client.Repository.
type ClientRepository struct {
	mock.Mock
}

func (m *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ClientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*client.Client); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) List(ctx context.Context, opts client.ListOptions) ([]client.Client, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]client.Client); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *ClientRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ClientRepository) AddInteraction(ctx context.Context, in *client.Interaction) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *ClientRepository) ListInteractions(ctx context.Context, clientID string) ([]client.Interaction, error) {
	args := m.Called(ctx, clientID)
	if list, ok := args.Get(0).([]client.Interaction); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// JumpRepository is a mock for jump.Repository.
type JumpRepository struct {
	mock.Mock
}

func (m *JumpRepository) Create(ctx context.Context, j *jump.Jump) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JumpRepository) Get(ctx context.Context, id string) (*jump.Jump, error) {
	args := m.Called(ctx, id)
	if j, ok := args.Get(0).(*jump.Jump); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JumpRepository) List(ctx context.Context, opts jump.ListOptions) ([]jump.Jump, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]jump.Jump); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JumpRepository) Update(ctx context.Context, j *jump.Jump) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *JumpRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *JumpRepository) LinkClient(ctx context.Context, jumpID, clientID string) error {
	args := m.Called(ctx, jumpID, clientID)
	return args.Error(0)
}

func (m *JumpRepository) UnlinkClient(ctx context.Context, jumpID, clientID string) error {
	args := m.Called(ctx, jumpID, clientID)
	return args.Error(0)
}

func (m *JumpRepository) SetClients(ctx context.Context, jumpID string, clientIDs []string) error {
	args := m.Called(ctx, jumpID, clientIDs)
	return args.Error(0)
}

func (m *JumpRepository) ListClients(ctx context.Context, jumpID string) ([]client.Client, error) {
	args := m.Called(ctx, jumpID)
	if list, ok := args.Get(0).([]client.Client); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JumpRepository) ListForClient(ctx context.Context, clientID string) ([]jump.Jump, error) {
	args := m.Called(ctx, clientID)
	if list, ok := args.Get(0).([]jump.Jump); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *JumpRepository) AddImage(ctx context.Context, jumpID, filename string) (*jump.Jump, error) {
	args := m.Called(ctx, jumpID, filename)
	if j, ok := args.Get(0).(*jump.Jump); ok {
		return j, args.Error(1)
	}
	return nil, args.Error(1)
}

// ProjectRepository is a mock for project.Repository.
type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProjectRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*project.Project); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, opts project.ListOptions) ([]project.Project, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Project); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) Update(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProjectRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProjectRepository) AssignCopilot(ctx context.Context, projectID string, a project.AssignmentRequest) error {
	args := m.Called(ctx, projectID, a)
	return args.Error(0)
}

func (m *ProjectRepository) UnassignCopilot(ctx context.Context, projectID, copilotID string) error {
	args := m.Called(ctx, projectID, copilotID)
	return args.Error(0)
}

func (m *ProjectRepository) SetCopilots(ctx context.Context, projectID string, assignments []project.AssignmentRequest) error {
	args := m.Called(ctx, projectID, assignments)
	return args.Error(0)
}

func (m *ProjectRepository) ListCopilots(ctx context.Context, projectID string) ([]project.Assignment, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]project.Assignment); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ProjectRepository) LinkReferral(ctx context.Context, projectID, referralID string) error {
	args := m.Called(ctx, projectID, referralID)
	return args.Error(0)
}

func (m *ProjectRepository) ListReferrals(ctx context.Context, projectID string) ([]referral.Referral, error) {
	args := m.Called(ctx, projectID)
	if list, ok := args.Get(0).([]referral.Referral); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// TaskRepository is a mock for project.TaskRepository.
type TaskRepository struct {
	mock.Mock
}

func (m *TaskRepository) Create(ctx context.Context, t *project.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Get(ctx context.Context, id string) (*project.Task, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*project.Task); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) List(ctx context.Context, opts project.TaskListOptions) ([]project.Task, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]project.Task); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *TaskRepository) Update(ctx context.Context, t *project.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *TaskRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// InvoiceRepository is a mock for invoice.Repository.
type InvoiceRepository struct {
	mock.Mock
}

func (m *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	args := m.Called(ctx, id)
	if inv, ok := args.Get(0).(*invoice.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) List(ctx context.Context, opts invoice.ListOptions) ([]invoice.Invoice, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]invoice.Invoice); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *InvoiceRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *InvoiceRepository) AddItem(ctx context.Context, item *invoice.Item) (*invoice.Invoice, error) {
	args := m.Called(ctx, item)
	if inv, ok := args.Get(0).(*invoice.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) DeleteItem(ctx context.Context, invoiceID, itemID string) (*invoice.Invoice, error) {
	args := m.Called(ctx, invoiceID, itemID)
	if inv, ok := args.Get(0).(*invoice.Invoice); ok {
		return inv, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *InvoiceRepository) ListItems(ctx context.Context, invoiceID string) ([]invoice.Item, error) {
	args := m.Called(ctx, invoiceID)
	if list, ok := args.Get(0).([]invoice.Item); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// CopilotRepository is a mock for copilot.Repository.
type CopilotRepository struct {
	mock.Mock
}

func (m *CopilotRepository) Create(ctx context.Context, c *copilot.Copilot) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CopilotRepository) Get(ctx context.Context, id string) (*copilot.Copilot, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*copilot.Copilot); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CopilotRepository) List(ctx context.Context, opts copilot.ListOptions) ([]copilot.Copilot, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]copilot.Copilot); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CopilotRepository) Update(ctx context.Context, c *copilot.Copilot) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CopilotRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// ReferralRepository is a mock for referral.Repository.
type ReferralRepository struct {
	mock.Mock
}

func (m *ReferralRepository) Create(ctx context.Context, ref *referral.Referral) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *ReferralRepository) Get(ctx context.Context, id string) (*referral.Referral, error) {
	args := m.Called(ctx, id)
	if ref, ok := args.Get(0).(*referral.Referral); ok {
		return ref, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReferralRepository) List(ctx context.Context, opts referral.ListOptions) ([]referral.Referral, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]referral.Referral); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ReferralRepository) Update(ctx context.Context, ref *referral.Referral) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *ReferralRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ReferralRepository) Convert(ctx context.Context, id string, c *client.Client) (*referral.Referral, error) {
	args := m.Called(ctx, id, c)
	switch v := args.Get(0).(type) {
	case func(context.Context, string, *client.Client) *referral.Referral:
		return v(ctx, id, c), args.Error(1)
	case *referral.Referral:
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// APIKeyRepository is a mock for apikey.Repository.
type APIKeyRepository struct {
	mock.Mock
}

func (m *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey, keyHash string) error {
	args := m.Called(ctx, key, keyHash)
	return args.Error(0)
}

func (m *APIKeyRepository) Get(ctx context.Context, id string) (*apikey.APIKey, error) {
	args := m.Called(ctx, id)
	if key, ok := args.Get(0).(*apikey.APIKey); ok {
		return key, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) GetByHash(ctx context.Context, keyHash string) (*apikey.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if key, ok := args.Get(0).(*apikey.APIKey); ok {
		return key, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) List(ctx context.Context) ([]apikey.APIKey, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]apikey.APIKey); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *APIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *APIKeyRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
