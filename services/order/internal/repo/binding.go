package repo

import (
	"context"

	"github.com/Skotchmaster/marketplace/services/order/internal/models"
)

func (r *GormRepo) CreateBinding(ctx context.Context, b *models.PaymentBinding) error {
	return r.DB.WithContext(ctx).Create(b).Error
}

func (r *GormRepo) FindBinding(ctx context.Context, reference string) (*models.PaymentBinding, error) {
	var b models.PaymentBinding
	if err := r.DB.WithContext(ctx).Where("reference = ?", reference).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// CompleteBinding marks a pending binding completed; false means another
// notification got there first.
func (r *GormRepo) CompleteBinding(ctx context.Context, reference string) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.PaymentBinding{}).
		Where("reference = ? AND status = ?", reference, models.BindingPending).
		Update("status", models.BindingCompleted)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

