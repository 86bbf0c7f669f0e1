package lead

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, sub *Submission) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *mockRepository) GetByID(ctx context.Context, id int64) (*Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Submission), args.Error(1)
}

func (m *mockRepository) List(ctx context.Context, status *Status, limit, offset int) ([]*Submission, int, error) {
	args := m.Called(ctx, status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*Submission), args.Int(1), args.Error(2)
}

func (m *mockRepository) ListAll(ctx context.Context) ([]*Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Submission), args.Error(1)
}

func (m *mockRepository) UpdateStatus(ctx context.Context, id int64, status Status, notes string) error {
	return m.Called(ctx, id, status, notes).Error(0)
}

func (m *mockRepository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[Status]int), args.Error(1)
}

func (m *mockRepository) CountByClassification(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, sub *Submission) error {
	return m.Called(ctx, sub).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) LeadCreated(sub *Submission) {
	m.Called(sub)
}

func TestSubmit_DispatchThenStoreThenNotify(t *testing.T) {
	repo := new(mockRepository)
	dispatcher := new(mockDispatcher)
	notifier := new(mockNotifier)
	svc := NewService(repo, dispatcher, notifier)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier.On("LeadCreated", mock.Anything).Return()

	sub, err := svc.Submit(context.Background(), scoringFixture(), buildInputFixture())
	require.NoError(t, err)

	assert.Equal(t, "tok-1", sub.SessionToken)
	dispatcher.AssertExpectations(t)
	repo.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestSubmit_DispatchFailureAbortsStore(t *testing.T) {
	repo := new(mockRepository)
	dispatcher := new(mockDispatcher)
	svc := NewService(repo, dispatcher, nil)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(ErrDispatchFailed)

	_, err := svc.Submit(context.Background(), scoringFixture(), buildInputFixture())

	assert.ErrorIs(t, err, ErrDispatchFailed)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_StoreFailureAfterDispatchIsSwallowed(t *testing.T) {
	repo := new(mockRepository)
	dispatcher := new(mockDispatcher)
	notifier := new(mockNotifier)
	svc := NewService(repo, dispatcher, notifier)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down"))

	// The CRM accepted the lead; failing the request now would make the
	// visitor retry and create a duplicate there.
	sub, err := svc.Submit(context.Background(), scoringFixture(), buildInputFixture())

	require.NoError(t, err)
	assert.NotNil(t, sub)
	notifier.AssertNotCalled(t, "LeadCreated", mock.Anything)
}

func TestSubmit_DuplicateSessionReturned(t *testing.T) {
	repo := new(mockRepository)
	dispatcher := new(mockDispatcher)
	svc := NewService(repo, dispatcher, nil)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrDuplicateSubmission)

	_, err := svc.Submit(context.Background(), scoringFixture(), buildInputFixture())

	assert.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestSubmit_NilNotifier(t *testing.T) {
	repo := new(mockRepository)
	dispatcher := new(mockDispatcher)
	svc := NewService(repo, dispatcher, nil)

	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return(nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.Submit(context.Background(), scoringFixture(), buildInputFixture())

	assert.NoError(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockDispatcher), nil)

	repo.On("GetByID", mock.Anything, int64(42)).Return(nil, nil)

	_, err := svc.GetByID(context.Background(), 42)

	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestList_ClampsLimit(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockDispatcher), nil)

	repo.On("List", mock.Anything, (*Status)(nil), 20, 0).
		Return([]*Submission{}, 0, nil).Times(3)

	_, _, err := svc.List(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), nil, 500, -5)
	require.NoError(t, err)
	_, _, err = svc.List(context.Background(), nil, -1, 0)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}

func TestUpdateStatus_ConvertedIsFrozen(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockDispatcher), nil)

	repo.On("GetByID", mock.Anything, int64(7)).
		Return(&Submission{ID: 7, Status: StatusConverted}, nil)

	err := svc.UpdateStatus(context.Background(), 7, StatusLost, "")

	assert.ErrorIs(t, err, ErrAlreadyConverted)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_Forward(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockDispatcher), nil)

	repo.On("GetByID", mock.Anything, int64(7)).
		Return(&Submission{ID: 7, Status: StatusNew}, nil)
	repo.On("UpdateStatus", mock.Anything, int64(7), StatusContacted, "angerufen").Return(nil)

	err := svc.UpdateStatus(context.Background(), 7, StatusContacted, "angerufen")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestStats(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, new(mockDispatcher), nil)

	repo.On("CountByStatus", mock.Anything).
		Return(map[Status]int{StatusNew: 3, StatusContacted: 1}, nil)
	repo.On("CountByClassification", mock.Anything).
		Return(map[string]int{"hot": 2, "warm": 2}, nil)

	byStatus, byClass, err := svc.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, byStatus[StatusNew])
	assert.Equal(t, 2, byClass["hot"])
}
