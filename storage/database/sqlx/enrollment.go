package sqlxrepos

import (
	"context"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
)

const paymentColumns = `id, user_id, course_id, payment_date, payment_method, payment_link, payment_id, summ`

type paymentRow struct {
	ID          int             `db:"id"`
	UserID      int             `db:"user_id"`
	CourseID    null.Int        `db:"course_id"`
	PaymentDate null.Time       `db:"payment_date"`
	Method      null.String     `db:"payment_method"`
	Link        null.String     `db:"payment_link"`
	SessionID   null.String     `db:"payment_id"`
	Amount      decimal.Decimal `db:"summ"`
}

func toPaymentRow(p enrollment.Payment) paymentRow {
	return paymentRow{
		ID:          p.ID,
		UserID:      p.UserID,
		CourseID:    p.CourseID,
		PaymentDate: null.NewTime(p.PaymentDate, !p.PaymentDate.IsZero()),
		Method:      nullString(p.Method),
		Link:        nullString(p.Link),
		SessionID:   nullString(p.SessionID),
		Amount:      p.Amount,
	}
}

func (r paymentRow) toPayment() enrollment.Payment {
	return enrollment.Payment{
		ID:          r.ID,
		UserID:      r.UserID,
		CourseID:    r.CourseID,
		PaymentDate: r.PaymentDate.Time.UTC(),
		Method:      r.Method.String,
		Link:        r.Link.String,
		SessionID:   r.SessionID.String,
		Amount:      r.Amount,
	}
}

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db core.DB) enrollment.Repository {
	return &enrollmentRepository{exec: db}
}

func (repo *enrollmentRepository) AddStudent(ctx context.Context, courseID, userID int) error {
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO course_student (course_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		courseID, userID,
	)
	if pqCode(err) == foreignKeyViolation {
		return course.ErrCourseNotFound
	}
	return err
}

func (repo *enrollmentRepository) RemoveStudent(ctx context.Context, courseID, userID int) error {
	_, err := repo.exec.ExecContext(ctx,
		`DELETE FROM course_student WHERE course_id = $1 AND user_id = $2`, courseID, userID,
	)
	return err
}

func (repo *enrollmentRepository) IsStudent(ctx context.Context, courseID, userID int) (bool, error) {
	var found bool
	err := repo.exec.GetContext(ctx, &found,
		`SELECT EXISTS (SELECT 1 FROM course_student WHERE course_id = $1 AND user_id = $2)`, courseID, userID,
	)
	return found, err
}

func (repo *enrollmentRepository) CreatePayment(ctx context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	row := toPaymentRow(p)
	err := repo.exec.GetContext(ctx, &row.ID, `
		INSERT INTO payment (user_id, course_id, payment_date, payment_method, payment_link, payment_id, summ)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		row.UserID, row.CourseID, row.PaymentDate, row.Method, row.Link, row.SessionID, row.Amount,
	)
	if err != nil {
		return enrollment.Payment{}, err
	}
	return row.toPayment(), nil
}

func (repo *enrollmentRepository) GetPayment(ctx context.Context, id int) (enrollment.Payment, error) {
	var row paymentRow
	if err := repo.exec.GetContext(ctx, &row, `SELECT `+paymentColumns+` FROM payment WHERE id = $1`, id); err != nil {
		return enrollment.Payment{}, notFound(err, enrollment.ErrPaymentNotFound)
	}
	return row.toPayment(), nil
}

func (repo *enrollmentRepository) UpdatePayment(ctx context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	row := toPaymentRow(p)
	res, err := repo.exec.NamedExecContext(ctx, `
		UPDATE payment SET
			payment_date = :payment_date, payment_method = :payment_method,
			payment_link = :payment_link, payment_id = :payment_id, summ = :summ
		WHERE id = :id`, row)
	if err != nil {
		return enrollment.Payment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enrollment.Payment{}, enrollment.ErrPaymentNotFound
	}
	return row.toPayment(), nil
}

func (repo *enrollmentRepository) QueryPayments(ctx context.Context, filter enrollment.PaymentFilter) ([]enrollment.Payment, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conds = append(conds, "user_id = $"+strconv.Itoa(len(args)))
	}
	if filter.CourseID != 0 {
		args = append(args, filter.CourseID)
		conds = append(conds, "course_id = $"+strconv.Itoa(len(args)))
	}
	q := `SELECT ` + paymentColumns + ` FROM payment`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY id DESC`

	var rows []paymentRow
	if err := repo.exec.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	payments := make([]enrollment.Payment, 0, len(rows))
	for _, r := range rows {
		payments = append(payments, r.toPayment())
	}
	return payments, nil
}
