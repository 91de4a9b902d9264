package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const (
	enquirerTableName         = "enquirers"
	propertyFollowUpTableName = "property_followups"
	paymentTableName          = "customer_payments"
)

var enquirerColumns = utils.StructTagValues(types.Enquirer{})

type EnquiryRepository struct {
	*Table[types.Enquirer]
	pool TxDB
}

func NewEnquiryRepository(db TxDB) *EnquiryRepository {
	return &EnquiryRepository{
		Table: NewTable[types.Enquirer](db, enquirerTableName, types.ErrEnquirerNotFound),
		pool:  db,
	}
}

// InsertMany writes every enquirer in one transaction.
func (r *EnquiryRepository) InsertMany(ctx context.Context, rows []*types.Enquirer) error {
	if len(rows) == 0 {
		return nil
	}

	builder := psql().Insert(enquirerTableName).Columns(enquirerColumns...)
	for _, row := range rows {
		values := utils.StructToMap(row)
		args := make([]any, 0, len(enquirerColumns))
		for _, column := range enquirerColumns {
			args = append(args, values[column])
		}
		builder = builder.Values(args...)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate bulk enquirer insert: %w", err)
	}

	return InTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query, args...)
		return mapError(err, "failed to insert enquirers")
	})
}

// Customers lists the tenant's enquirers that reached the Token stage. The
// tenant is read from the property, not the enquiry.
func (r *EnquiryRepository) Customers(ctx context.Context, projectPartnerID string) ([]*types.CustomerRow, error) {
	query, args, err := customersQuery(projectPartnerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate customers query: %w", err)
	}

	var rows = make([]*types.CustomerRow, 0)
	err = pgxscan.Select(ctx, r.db, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return rows, nil
}

const latestTokenFollowUps = `(SELECT DISTINCT ON (enquirer_id) enquirer_id, token_amount, followup, created_at
	FROM ` + propertyFollowUpTableName + `
	WHERE status = ?
	ORDER BY enquirer_id, created_at DESC, id DESC) pf ON pf.enquirer_id = e.id`

func customersQuery(projectPartnerID string) sq.SelectBuilder {
	columns := utils.PrefixSliceOfStrings("e", enquirerColumns)
	columns = append(columns,
		"p.property_name",
		"p.property_category",
		"t.fullname AS territory_name",
		"t.contact AS territory_contact",
		"pf.token_amount",
		"pf.followup AS token_note",
		"pf.created_at AS token_at",
		"p.projectpartner_id AS property_projectpartner_id",
	)

	return psql().Select(columns...).
		From(enquirerTableName+" e").
		LeftJoin(propertyTableName+" p ON p.id = e.property_id").
		LeftJoin("territory_partners t ON t.id = e.territorypartner_id").
		Join(latestTokenFollowUps, types.StatusToken).
		Where(sq.Eq{"e.status": types.StatusToken, "p.projectpartner_id": projectPartnerID}).
		OrderBy("e.created_at DESC", "e.id DESC")
}

type PropertyFollowUpRepository struct {
	*Table[types.PropertyFollowUp]
}

func NewPropertyFollowUpRepository(db DB) *PropertyFollowUpRepository {
	return &PropertyFollowUpRepository{
		Table: NewTable[types.PropertyFollowUp](db, propertyFollowUpTableName, types.ErrFollowUpNotFound),
	}
}

type PaymentRepository struct {
	*Table[types.CustomerPayment]
}

func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{
		Table: NewTable[types.CustomerPayment](db, paymentTableName, types.ErrPaymentNotFound),
	}
}
