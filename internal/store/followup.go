package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const followUpTableName = "partner_followups"

type FollowUpRepository struct {
	*Table[types.FollowUp]
}

func NewFollowUpRepository(db DB) *FollowUpRepository {
	return &FollowUpRepository{
		Table: NewTable[types.FollowUp](db, followUpTableName, types.ErrFollowUpNotFound),
	}
}

// History lists a partner's follow-ups for role, newest first.
func (r *FollowUpRepository) History(ctx context.Context, partnerID string, role types.Role) ([]*types.FollowUp, error) {
	return r.List(ctx, sq.Eq{"partner_id": partnerID, "role": role})
}

// DeleteForPartner removes every follow-up of a partner.
func (r *FollowUpRepository) DeleteForPartner(ctx context.Context, partnerID string, role types.Role) error {
	query, args, err := psql().Delete(followUpTableName).
		Where(sq.Eq{"partner_id": partnerID, "role": role}).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, query, args...)
	return mapError(err, "failed to delete follow-ups")
}
