package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) AddStudent(_ context.Context, courseID, userID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.courses[courseID]; !ok {
		return course.ErrCourseNotFound
	}
	repo.db.students[pair{courseID, userID}] = struct{}{}
	return nil
}

func (repo *enrollmentRepository) RemoveStudent(_ context.Context, courseID, userID int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	delete(repo.db.students, pair{courseID, userID})
	return nil
}

func (repo *enrollmentRepository) IsStudent(_ context.Context, courseID, userID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	_, ok := repo.db.students[pair{courseID, userID}]
	return ok, nil
}

func (repo *enrollmentRepository) CreatePayment(_ context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	p.ID = repo.db.nextPK()
	repo.db.payments[p.ID] = p
	return p, nil
}

func (repo *enrollmentRepository) GetPayment(_ context.Context, id int) (enrollment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if p, ok := repo.db.payments[id]; ok {
		return p, nil
	}
	return enrollment.Payment{}, enrollment.ErrPaymentNotFound
}

func (repo *enrollmentRepository) UpdatePayment(_ context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.payments[p.ID]; !ok {
		return enrollment.Payment{}, enrollment.ErrPaymentNotFound
	}
	repo.db.payments[p.ID] = p
	return p, nil
}

func (repo *enrollmentRepository) QueryPayments(_ context.Context, filter enrollment.PaymentFilter) ([]enrollment.Payment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	payments := make([]enrollment.Payment, 0)
	for _, p := range repo.db.payments {
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		if filter.CourseID != 0 && !(p.CourseID.Valid && p.CourseID.Int == filter.CourseID) {
			continue
		}
		payments = append(payments, p)
	}
	sort.Slice(payments, func(i, j int) bool { return payments[i].ID > payments[j].ID })
	return payments, nil
}
