package twofa

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type MockStatusService struct {
	HasActiveFunc func(ctx context.Context, accountID uuid.UUID) (bool, error)
	calls         int
}

func (m *MockStatusService) HasActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	m.calls++
	if m.HasActiveFunc != nil {
		return m.HasActiveFunc(ctx, accountID)
	}
	return false, nil
}

type MockRecordLookup struct {
	ActiveRecordExistsFunc func(ctx context.Context, accountID uuid.UUID) (bool, error)
	calls                  int
}

func (m *MockRecordLookup) ActiveRecordExists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	m.calls++
	if m.ActiveRecordExistsFunc != nil {
		return m.ActiveRecordExistsFunc(ctx, accountID)
	}
	return false, nil
}

func returns(active bool, err error) func(context.Context, uuid.UUID) (bool, error) {
	return func(context.Context, uuid.UUID) (bool, error) {
		return active, err
	}
}

func TestDetector(t *testing.T) {
	unavailable := errors.New("status service unavailable")

	tests := []struct {
		name          string
		primary       func(context.Context, uuid.UUID) (bool, error)
		fallback      func(context.Context, uuid.UUID) (bool, error)
		want          bool
		wantErr       bool
		fallbackCalls int
	}{
		{"primary active", returns(true, nil), returns(false, nil), true, false, 0},
		{"primary inactive, record inactive", returns(false, nil), returns(false, nil), false, false, 1},
		{"primary inactive, record active", returns(false, nil), returns(true, nil), true, false, 1},
		{"primary unavailable, record active", returns(false, unavailable), returns(true, nil), true, false, 1},
		{"primary unavailable, record inactive", returns(false, unavailable), returns(false, nil), false, false, 1},
		{"both unavailable", returns(false, unavailable), returns(false, unavailable), false, true, 1},
		{"record lookup fails after clean primary", returns(false, nil), returns(false, unavailable), false, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &MockStatusService{HasActiveFunc: tt.primary}
			fallback := &MockRecordLookup{ActiveRecordExistsFunc: tt.fallback}
			d := NewDetector(primary, fallback)

			got, err := d.HasActiveSecondFactor(context.Background(), uuid.New())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, primary.calls)
			assert.Equal(t, tt.fallbackCalls, fallback.calls)
		})
	}
}

func TestDetectorNilPaths(t *testing.T) {
	ctx := context.Background()

	has, err := NewDetector(nil, nil).HasActiveSecondFactor(ctx, uuid.New())
	assert.NoError(t, err)
	assert.False(t, has)

	has, err = NewDetector(nil, &MockRecordLookup{ActiveRecordExistsFunc: returns(true, nil)}).HasActiveSecondFactor(ctx, uuid.New())
	assert.NoError(t, err)
	assert.True(t, has)

	_, err = NewDetector(&MockStatusService{HasActiveFunc: returns(false, errors.New("down"))}, nil).HasActiveSecondFactor(ctx, uuid.New())
	assert.Error(t, err)
}

func TestDetectorAgreesAcrossPaths(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryEnrollmentRepository()
	svc := NewService(repo)
	accountID := uuid.New()

	_, err := svc.Enroll(ctx, accountID, "bob")
	assert.NoError(t, err)

	viaPrimary, err := NewDetector(svc, nil).HasActiveSecondFactor(ctx, accountID)
	assert.NoError(t, err)
	viaRecord, err := NewDetector(nil, repo).HasActiveSecondFactor(ctx, accountID)
	assert.NoError(t, err)

	assert.True(t, viaPrimary)
	assert.Equal(t, viaPrimary, viaRecord)
}
