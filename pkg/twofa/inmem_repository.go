package twofa

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryEnrollmentRepository implements EnrollmentRepository and RecordLookup in memory
type InMemoryEnrollmentRepository struct {
	mu          sync.RWMutex
	enrollments map[uuid.UUID]Enrollment
}

// NewInMemoryEnrollmentRepository creates a new in-memory enrollment repository
func NewInMemoryEnrollmentRepository() *InMemoryEnrollmentRepository {
	return &InMemoryEnrollmentRepository{
		enrollments: make(map[uuid.UUID]Enrollment),
	}
}

func (r *InMemoryEnrollmentRepository) Create(ctx context.Context, enrollment Enrollment) (Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if enrollment.ID == uuid.Nil {
		enrollment.ID = uuid.New()
	}
	enrollment.CreatedAt = time.Now().UTC()
	r.enrollments[enrollment.ID] = enrollment
	return enrollment, nil
}

func (r *InMemoryEnrollmentRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.enrollments[id]
	if !ok {
		return ErrEnrollmentNotFound
	}
	e.Active = active
	r.enrollments[id] = e
	return nil
}

func (r *InMemoryEnrollmentRepository) FindActiveByAccountID(ctx context.Context, accountID uuid.UUID) ([]Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := []Enrollment{}
	for _, e := range r.enrollments {
		if e.AccountID == accountID && e.Active {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (r *InMemoryEnrollmentRepository) ActiveRecordExists(ctx context.Context, accountID uuid.UUID) (bool, error) {
	active, err := r.FindActiveByAccountID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}
