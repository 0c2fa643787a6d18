package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bacon13/picfeed/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository stores the profile records keyed by IdP subject id.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the existing profile for the subject, creating an
// empty one on first sight. Concurrent first requests for the same subject
// are safe: creation ignores a losing duplicate insert and re-reads.
func (r *UserRepository) GetOrCreate(ctx context.Context, id string, email string) (*model.User, error) {
	// Truncate to the timestamp precision Postgres stores so the returned
	// record matches a later read of the same row.
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &model.User{
		Id:            id,
		Email:         email,
		CreatedAt:     now,
		UpdatedAt:     now,
		ProfileImages: datatypes.JSON([]byte("[]")),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(user)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return user, nil
	}

	var existing model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

// Get returns the profile or gorm.ErrRecordNotFound.
func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfileImages replaces the profile image list and bumps UpdatedAt.
// Returns gorm.ErrRecordNotFound when no profile exists for the subject.
func (r *UserRepository) UpdateProfileImages(ctx context.Context, id string, images []string) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"profile_images": datatypes.JSON(raw),
		"updated_at":     time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
