package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinova/clinova/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const invCols = `i.id, i.invoice_number, i.patient_id, i.amount, i.status, i.due_date,
	i.description, i.discount, i.tax, i.notes, i.paid_at, i.external_id,
	i.created_at, i.updated_at, p.first_name, p.last_name`

const invFrom = ` FROM invoice i JOIN patient p ON p.id = i.patient_id`

func (r *repoPG) CreateInvoice(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, invoice_number, patient_id, amount, status, due_date,
			description, discount, tax, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		inv.ID, inv.InvoiceNumber, inv.PatientID, inv.Amount, inv.Status, inv.DueDate,
		inv.Description, inv.Discount, inv.Tax, inv.Notes,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrPatientNotFound
		}
		return err
	}
	return nil
}

func (r *repoPG) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*Invoice, error) {
	return scanInvoice(r.conn(ctx).QueryRow(ctx,
		`SELECT `+invCols+invFrom+` WHERE i.id = $1`, id))
}

func (r *repoPG) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE invoice SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status <> $3`,
		id, status, InvoicePaid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := r.conn(ctx).QueryRow(ctx,
			`SELECT status FROM invoice WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvoiceNotFound
		}
		if err != nil {
			return err
		}
		return ErrAlreadyPaid
	}
	return nil
}

func (r *repoPG) ListInvoices(ctx context.Context, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoice`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+invCols+invFrom+` ORDER BY i.created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectInvoices(rows, total)
}

func (r *repoPG) ListInvoicesByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Invoice, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM invoice WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+invCols+invFrom+` WHERE i.patient_id = $1 ORDER BY i.created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectInvoices(rows, total)
}

func (r *repoPG) GetPatientRef(ctx context.Context, patientID uuid.UUID) (*PatientRef, error) {
	var ref PatientRef
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, first_name, last_name, email FROM patient WHERE id = $1`,
		patientID).Scan(&ref.ID, &ref.FirstName, &ref.LastName, &ref.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// ApplyCheckoutCompleted runs the paid transition and the payment insert in
// one transaction. The payment's unique checkout_session_id makes replays
// insert nothing, and the invoice update is conditional on not being PAID,
// so the pair can never double-apply.
func (r *repoPG) ApplyCheckoutCompleted(ctx context.Context, invoiceID uuid.UUID, p *Payment) error {
	ctx, tx, err := db.WithTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM invoice WHERE id = $1 FOR UPDATE`, invoiceID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrInvoiceNotFound
	}
	if err != nil {
		return err
	}

	p.ID = uuid.New()
	tag, err := tx.Exec(ctx, `
		INSERT INTO payment (id, invoice_id, amount, status, method, external_id, checkout_session_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (checkout_session_id) DO NOTHING`,
		p.ID, p.InvoiceID, p.Amount, p.Status, p.Method, p.ExternalID, p.CheckoutSessionID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		// Replayed event; the first delivery already settled everything.
		return tx.Commit(ctx)
	}

	_, err = tx.Exec(ctx, `
		UPDATE invoice SET status = $2, paid_at = NOW(), external_id = $3, updated_at = NOW()
		WHERE id = $1 AND status <> $2`,
		invoiceID, InvoicePaid, p.CheckoutSessionID)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *repoPG) ListPaymentsByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Payment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, invoice_id, amount, status, method, external_id, checkout_session_id, created_at
		FROM payment WHERE invoice_id = $1 ORDER BY created_at DESC`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Status, &p.Method,
			&p.ExternalID, &p.CheckoutSessionID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	err := row.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.PatientID, &inv.Amount, &inv.Status, &inv.DueDate,
		&inv.Description, &inv.Discount, &inv.Tax, &inv.Notes, &inv.PaidAt, &inv.ExternalID,
		&inv.CreatedAt, &inv.UpdatedAt, &inv.PatientFirstName, &inv.PatientLastName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &inv, nil
}

func collectInvoices(rows pgx.Rows, total int) ([]*Invoice, int, error) {
	var out []*Invoice
	for rows.Next() {
		var inv Invoice
		if err := rows.Scan(
			&inv.ID, &inv.InvoiceNumber, &inv.PatientID, &inv.Amount, &inv.Status, &inv.DueDate,
			&inv.Description, &inv.Discount, &inv.Tax, &inv.Notes, &inv.PaidAt, &inv.ExternalID,
			&inv.CreatedAt, &inv.UpdatedAt, &inv.PatientFirstName, &inv.PatientLastName,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, &inv)
	}
	return out, total, rows.Err()
}
