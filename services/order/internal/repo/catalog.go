package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/marketplace/services/order/internal/domain"
	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

// Snapshot reads the requested products in one query. Inactive and missing
// ids are reported with their reason instead of a snapshot.
func (r *GormRepo) Snapshot(ctx context.Context, ids []uuid.UUID) (domain.Availability, error) {
	av := domain.NewAvailability()
	if len(ids) == 0 {
		return av, nil
	}

	var products []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return av, err
	}

	for _, p := range products {
		if !p.Active {
			av.Unavailable[p.ID] = domain.ReasonInactive
			continue
		}
		av.Snapshots[p.ID] = domain.SnapshotOf(p)
	}
	for _, id := range ids {
		if _, ok := av.Snapshots[id]; ok {
			continue
		}
		if _, ok := av.Unavailable[id]; !ok {
			av.Unavailable[id] = domain.ReasonNotFound
		}
	}
	return av, nil
}
