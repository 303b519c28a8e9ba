package models

import (
	"time"
)

// DateLayout is the wire format of release dates.
const DateLayout = "2006-01-02"

type Movie struct {
	ID          uint      `gorm:"primaryKey" json:"id" example:"1"`
	TMDBID      *int      `gorm:"uniqueIndex" json:"tmdb_id,omitempty" example:"693134"`
	Title       string    `gorm:"not null;index" json:"title" example:"Dune: Part Two"`
	Description string    `gorm:"type:text" json:"description" example:"Paul Atreides unites with the Fremen..."`
	Genres      []Genre   `gorm:"many2many:movie_genres;" json:"-"`
	GenreNames  []string  `gorm:"-" json:"genre" example:"Science Fiction,Adventure"`
	ReleaseDate time.Time `gorm:"type:date;not null;index" json:"-"`
	Release     string    `gorm:"-" json:"release_date" example:"2024-03-01"`
	Rating      *float64  `gorm:"index" json:"rating,omitempty" example:"8.5"`
	Banner      string    `json:"banner" example:"https://image.tmdb.org/t/p/w500/8b8R8l88Qje9dn9OE8PY05Nxl1X.jpg"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`
}

func (Movie) TableName() string {
	return "movies"
}

// Present fills the JSON-only fields from the persisted ones.
func (m *Movie) Present() {
	m.GenreNames = make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		m.GenreNames = append(m.GenreNames, g.Name)
	}
	if !m.ReleaseDate.IsZero() {
		m.Release = m.ReleaseDate.Format(DateLayout)
	}
}

// MovieFilter narrows a movie listing.
type MovieFilter struct {
	Page        int
	Limit       int
	Genre       string
	ReleaseDate string
	Search      string
	StartDate   string
	EndDate     string
	SortBy      string
	Order       string
}

type TMDBMovieResponse struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Overview     string  `json:"overview"`
	ReleaseDate  string  `json:"release_date"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	VoteAverage  float64 `json:"vote_average"`
	GenreIDs     []int   `json:"genre_ids"`
}

type TMDBPopularMoviesResponse struct {
	Page         int                 `json:"page"`
	Results      []TMDBMovieResponse `json:"results"`
	TotalPages   int                 `json:"total_pages"`
	TotalResults int                 `json:"total_results"`
}

type SyncLog struct {
	ID            uint      `gorm:"primaryKey" json:"id" example:"1"`
	SyncType      string    `gorm:"index" json:"sync_type" example:"manual"`
	Status        string    `gorm:"index" json:"status" example:"success"`
	MoviesAdded   int       `json:"movies_added" example:"20"`
	MoviesUpdated int       `json:"movies_updated" example:"5"`
	ErrorMessage  string    `gorm:"type:text" json:"error_message,omitempty"`
	SyncedAt      time.Time `gorm:"index" json:"synced_at"`
	CreatedAt     time.Time `json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}

type DashboardStats struct {
	TotalMovies    int64      `json:"total_movies" example:"100"`
	AverageRating  float64    `json:"average_rating" example:"7.5"`
	TotalShowtimes int64      `json:"total_showtimes" example:"40"`
	TotalOrders    int64      `json:"total_orders" example:"320"`
	TicketsSold    int64      `json:"tickets_sold" example:"812"`
	RevenueCents   int64      `json:"revenue_cents" example:"1054788"`
	LastSyncTime   *time.Time `json:"last_sync_time"`
	TopRatedMovies []Movie    `json:"top_rated_movies"`
	RecentlyAdded  []Movie    `json:"recently_added"`
}

type ChartData struct {
	Label string `json:"label" example:"Drama"`
	Value int64  `json:"value" example:"15"`
}
