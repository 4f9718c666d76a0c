package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// FlowStore resolves flows from external identifiers.
type FlowStore interface {
	FindFlowIDBySohoID(ctx context.Context, sohoID int64) (int64, error)
}

// FlowRepository manages flow lookups.
type FlowRepository struct {
	db sqlx.ExtContext
}

// NewFlowRepository constructs a FlowRepository.
func NewFlowRepository(db sqlx.ExtContext) *FlowRepository {
	return &FlowRepository{db: db}
}

// FindFlowIDBySohoID resolves an external soho flow id to the internal flow
// id through flow_products. A missing mapping yields 0, not an error: the
// enrollment proceeds without a flow.
func (r *FlowRepository) FindFlowIDBySohoID(ctx context.Context, sohoID int64) (int64, error) {
	const query = `SELECT flow_id FROM flow_products WHERE soho_id = $1`
	var flowID int64
	if err := sqlx.GetContext(ctx, r.db, &flowID, query, sohoID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("resolve flow by soho id: %w", err)
	}
	return flowID, nil
}
