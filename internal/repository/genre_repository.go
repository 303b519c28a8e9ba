package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"movie-booking/internal/database"
	"movie-booking/internal/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	FindOrCreate(ctx context.Context, name string) (*models.Genre, error)
	FindAll(ctx context.Context) ([]models.Genre, error)
}

type genreRepository struct {
	db      *database.Database
	timeout time.Duration
}

func NewGenreRepository(db *database.Database) GenreRepository {
	return &genreRepository{
		db:      db,
		timeout: db.GetQueryTimeout(),
	}
}

func (r *genreRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// FindOrCreate looks a genre up by name, ignoring case, and creates it when
// missing. The first spelling seen is the one stored.
func (r *genreRepository) FindOrCreate(ctx context.Context, name string) (*models.Genre, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	name = strings.TrimSpace(name)
	db := r.db.WithContext(ctx)

	var genre models.Genre
	err := db.Where("LOWER(name) = LOWER(?)", name).Attrs(models.Genre{Name: name}).FirstOrCreate(&genre).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent insert of the same name
		err = db.Where("LOWER(name) = LOWER(?)", name).First(&genre).Error
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

func (r *genreRepository) FindAll(ctx context.Context) ([]models.Genre, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var genres []models.Genre
	err := r.db.WithContext(ctx).Order("name ASC").Find(&genres).Error
	return genres, err
}
