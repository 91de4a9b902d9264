package store

import (
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const propertyTableName = "properties"

type PropertyRepository struct {
	*Table[types.Property]
}

func NewPropertyRepository(db DB) *PropertyRepository {
	return &PropertyRepository{
		Table: NewTable[types.Property](db, propertyTableName, types.ErrPropertyNotFound),
	}
}
