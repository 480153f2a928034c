package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/nexus/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/nexus/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListTrialsEndingBetween(ctx context.Context, from, to time.Time) ([]*models.TrialEndingNotice, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TrialEndingNotice), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSchedulerService_RunOnce(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	from := now.Add(24 * time.Hour)
	to := now.Add(48 * time.Hour)

	first := &models.TrialEndingNotice{GroupID: 1, GroupName: "Go Club", Email: "alice@example.com", TrialEndDate: from.Add(time.Hour)}
	second := &models.TrialEndingNotice{GroupID: 2, GroupName: "Chess", Email: "bob@example.com", TrialEndDate: from.Add(2 * time.Hour)}

	tests := []struct {
		name          string
		setupMocks    func(*MockRepository, *MockPublisher)
		wantPublished int
		wantErr       bool
	}{
		{
			name: "publishes every notice",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ListTrialsEndingBetween", mock.Anything, from, to).
					Return([]*models.TrialEndingNotice{first, second}, nil).Once()
				p.On("Publish", mock.Anything, rabbitmq.RoutingTrialEnding, first).Return(nil).Once()
				p.On("Publish", mock.Anything, rabbitmq.RoutingTrialEnding, second).Return(nil).Once()
			},
			wantPublished: 2,
		},
		{
			name: "nothing ends tomorrow",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ListTrialsEndingBetween", mock.Anything, from, to).
					Return([]*models.TrialEndingNotice{}, nil).Once()
			},
		},
		{
			name: "repository error",
			setupMocks: func(r *MockRepository, _ *MockPublisher) {
				r.On("ListTrialsEndingBetween", mock.Anything, from, to).
					Return(nil, errors.New("db error")).Once()
			},
			wantErr: true,
		},
		{
			name: "publish error skips one notice",
			setupMocks: func(r *MockRepository, p *MockPublisher) {
				r.On("ListTrialsEndingBetween", mock.Anything, from, to).
					Return([]*models.TrialEndingNotice{first, second}, nil).Once()
				p.On("Publish", mock.Anything, rabbitmq.RoutingTrialEnding, first).Return(errors.New("channel closed")).Once()
				p.On("Publish", mock.Anything, rabbitmq.RoutingTrialEnding, second).Return(nil).Once()
			},
			wantPublished: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			pub := new(MockPublisher)
			tt.setupMocks(repo, pub)

			service := NewSchedulerService(repo, pub, newNoopLogger())
			service.now = func() time.Time { return now }

			published, err := service.RunOnce(context.Background())
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantPublished, published)
			repo.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_RunStopsOnCancel(t *testing.T) {
	called := make(chan struct{}, 1)
	repo := new(MockRepository)
	repo.On("ListTrialsEndingBetween", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			select {
			case called <- struct{}{}:
			default:
			}
		}).
		Return([]*models.TrialEndingNotice{}, nil)

	service := NewSchedulerService(repo, new(MockPublisher), newNoopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		service.Run(ctx)
		close(done)
	}()

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("first pass did not run")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
