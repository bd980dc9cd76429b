package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go-matchmaking-backend/internal/cache"
	"go-matchmaking-backend/internal/domain"
	"go-matchmaking-backend/internal/matching"
	"go-matchmaking-backend/internal/usecase"
	"go-matchmaking-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories
type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) FetchPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Preferences), args.Error(1)
}

func (m *MockProfileRepo) FetchCandidates(ctx context.Context, box domain.BoundingBox, excludeIDs []string, limit int) ([]domain.Profile, error) {
	args := m.Called(ctx, box, excludeIDs, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Record(ctx context.Context, event *domain.MatchEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepo) GetSeenProfiles(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func testPrefs() *domain.Preferences {
	return &domain.Preferences{
		UserID:           "requester",
		Latitude:         40.7128,
		Longitude:        -74.0060,
		MaxDistanceKm:    50,
		MinAge:           21,
		MaxAge:           35,
		MinHeightCm:      160,
		MaxHeightCm:      180,
		PreferredGenders: []string{"female"},
		PreferredSports:  []string{"tennis"},
	}
}

func testCandidate(id string) domain.Profile {
	return domain.Profile{
		UserID:     id,
		Name:       "User " + id,
		Age:        25,
		HeightCm:   170,
		Gender:     "female",
		Latitude:   40.72,
		Longitude:  -74.01,
		IsVerified: true,
		IsActive:   true,
		Sports:     []string{"tennis"},
	}
}

func newTestUsecase(profiles domain.ProfileRepository, events domain.EventRepository) domain.MatchUsecase {
	return usecase.NewMatchUsecase(usecase.MatchUsecaseDeps{
		Profiles:      profiles,
		Events:        events,
		Cache:         cache.NewTieredCache(100, time.Minute, nil, slog.New(slog.NewTextHandler(io.Discard, nil))),
		Pipeline:      matching.NewPipeline(domain.DefaultScoringWeights(), 10.0, 1.0),
		Validate:      validator.New(),
		Log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefaultLimit:  20,
		MaxLimit:      100,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
	})
}

func intPtr(v int) *int { return &v }

func TestFindMatchesValidation(t *testing.T) {
	uc := newTestUsecase(new(MockProfileRepo), new(MockEventRepo))

	t.Run("missing userId is rejected before touching collaborators", func(t *testing.T) {
		_, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{})
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
	})

	t.Run("limit zero returns empty without error", func(t *testing.T) {
		resp, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{
			UserID: "requester",
			Limit:  intPtr(0),
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Matches)
	})
}

func TestFindMatchesMissingPreferences(t *testing.T) {
	profiles := new(MockProfileRepo)
	events := new(MockEventRepo)
	events.On("GetSeenProfiles", mock.Anything, "ghost").Return([]string{}, nil)
	profiles.On("FetchPreferences", mock.Anything, "ghost").Return(nil, nil)

	uc := newTestUsecase(profiles, events)
	_, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{UserID: "ghost"})

	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestFindMatchesHappyPath(t *testing.T) {
	profiles := new(MockProfileRepo)
	events := new(MockEventRepo)

	events.On("GetSeenProfiles", mock.Anything, "requester").Return([]string{"seen1"}, nil)
	profiles.On("FetchPreferences", mock.Anything, "requester").Return(testPrefs(), nil)
	profiles.On("GetProfile", mock.Anything, "requester").Return(nil, nil)
	profiles.On("FetchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Profile{testCandidate("c1"), testCandidate("seen1"), testCandidate("client_excluded")}, nil)

	uc := newTestUsecase(profiles, events)
	resp, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{
		UserID:         "requester",
		ExcludeUserIDs: []string{"client_excluded"},
	})

	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "c1", resp.Matches[0].UserID)
	assert.Equal(t, 3, resp.TotalResults)
	assert.Nil(t, resp.NextCursor)
}

func TestFindMatchesCacheHitEquivalence(t *testing.T) {
	profiles := new(MockProfileRepo)
	events := new(MockEventRepo)

	events.On("GetSeenProfiles", mock.Anything, "requester").Return([]string{}, nil)
	profiles.On("FetchPreferences", mock.Anything, "requester").Return(testPrefs(), nil).Once()
	profiles.On("GetProfile", mock.Anything, "requester").Return(nil, nil).Once()
	profiles.On("FetchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Profile{testCandidate("c1"), testCandidate("c2")}, nil).Once()

	uc := newTestUsecase(profiles, events)
	req := &domain.FindMatchesRequest{UserID: "requester"}

	first, err := uc.FindMatches(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.FindMatches(context.Background(), req)
	require.NoError(t, err)

	// The second call is served from cache; the repos were hit exactly once.
	assert.Equal(t, first.Matches, second.Matches)
	profiles.AssertNumberOfCalls(t, "FetchCandidates", 1)
}

func TestFindMatchesExclusionIdempotence(t *testing.T) {
	profiles := new(MockProfileRepo)
	events := new(MockEventRepo)

	events.On("GetSeenProfiles", mock.Anything, "requester").Return([]string{}, nil)
	profiles.On("FetchPreferences", mock.Anything, "requester").Return(testPrefs(), nil).Once()
	profiles.On("GetProfile", mock.Anything, "requester").Return(nil, nil).Once()
	profiles.On("FetchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]domain.Profile{testCandidate("c1"), testCandidate("c2")}, nil).Once()

	uc := newTestUsecase(profiles, events)

	once, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{
		UserID:         "requester",
		ExcludeUserIDs: []string{"c2"},
	})
	require.NoError(t, err)

	// A duplicated exclusion id maps to the same cache key and result.
	twice, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{
		UserID:         "requester",
		ExcludeUserIDs: []string{"c2", "c2"},
	})
	require.NoError(t, err)

	require.Len(t, once.Matches, 1)
	assert.Equal(t, "c1", once.Matches[0].UserID)
	assert.Equal(t, once.Matches, twice.Matches)
	profiles.AssertNumberOfCalls(t, "FetchCandidates", 1)
}

// countingProfileRepo counts upstream computations for the single-flight
// contract: concurrent requests for one key must hit upstream exactly once.
type countingProfileRepo struct {
	fetches atomic.Int32
	block   chan struct{}
}

func (r *countingProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return nil, nil
}

func (r *countingProfileRepo) FetchPreferences(ctx context.Context, userID string) (*domain.Preferences, error) {
	r.fetches.Add(1)
	<-r.block
	return testPrefs(), nil
}

func (r *countingProfileRepo) FetchCandidates(ctx context.Context, box domain.BoundingBox, excludeIDs []string, limit int) ([]domain.Profile, error) {
	return []domain.Profile{testCandidate("c1")}, nil
}

type staticEventRepo struct{}

func (staticEventRepo) Record(ctx context.Context, event *domain.MatchEvent) error { return nil }
func (staticEventRepo) GetSeenProfiles(ctx context.Context, userID string) ([]string, error) {
	return nil, nil
}

func TestFindMatchesSingleFlight(t *testing.T) {
	repo := &countingProfileRepo{block: make(chan struct{})}
	uc := newTestUsecase(repo, staticEventRepo{})

	const callers = 10
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			resp, err := uc.FindMatches(context.Background(), &domain.FindMatchesRequest{UserID: "requester"})
			assert.NoError(t, err)
			if assert.NotNil(t, resp) {
				assert.Len(t, resp.Matches, 1)
			}
		}()
	}

	// Give every caller time to coalesce onto the in-flight computation.
	time.Sleep(50 * time.Millisecond)
	close(repo.block)
	wg.Wait()

	assert.Equal(t, int32(1), repo.fetches.Load())
}

func TestRecordEvent(t *testing.T) {
	t.Run("rejects unknown event type", func(t *testing.T) {
		uc := newTestUsecase(new(MockProfileRepo), new(MockEventRepo))
		_, err := uc.RecordEvent(context.Background(), &domain.RecordEventRequest{
			UserID:       "u1",
			TargetUserID: "u2",
			EventType:    "poked",
		})
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Code)
	})

	t.Run("records valid event with generated id", func(t *testing.T) {
		events := new(MockEventRepo)
		events.On("Record", mock.Anything, mock.AnythingOfType("*domain.MatchEvent")).Return(nil).Run(func(args mock.Arguments) {
			e := args.Get(1).(*domain.MatchEvent)
			assert.Equal(t, "u1", e.UserID)
			assert.Equal(t, "u2", e.TargetUserID)
			assert.Equal(t, domain.EventLiked, e.EventType)
			assert.NotEmpty(t, e.ID)
		})

		uc := newTestUsecase(new(MockProfileRepo), events)
		resp, err := uc.RecordEvent(context.Background(), &domain.RecordEventRequest{
			UserID:       "u1",
			TargetUserID: "u2",
			EventType:    "liked",
		})
		require.NoError(t, err)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.EventID)
		events.AssertExpectations(t)
	})

	t.Run("sink failure surfaces as upstream error", func(t *testing.T) {
		events := new(MockEventRepo)
		events.On("Record", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

		uc := newTestUsecase(new(MockProfileRepo), events)
		_, err := uc.RecordEvent(context.Background(), &domain.RecordEventRequest{
			UserID:       "u1",
			TargetUserID: "u2",
			EventType:    "viewed",
		})
		require.Error(t, err)
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 502, appErr.Code)
	})
}

func TestSeenProfiles(t *testing.T) {
	t.Run("requires userId", func(t *testing.T) {
		uc := newTestUsecase(new(MockProfileRepo), new(MockEventRepo))
		_, err := uc.SeenProfiles(context.Background(), "")
		assert.Error(t, err)
	})

	t.Run("returns seen ids", func(t *testing.T) {
		events := new(MockEventRepo)
		events.On("GetSeenProfiles", mock.Anything, "u1").Return([]string{"a", "b"}, nil)

		uc := newTestUsecase(new(MockProfileRepo), events)
		resp, err := uc.SeenProfiles(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, resp.Count)
		assert.Equal(t, []string{"a", "b"}, resp.SeenProfiles)
	})
}
