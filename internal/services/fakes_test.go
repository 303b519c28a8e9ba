package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"movie-booking/internal/apperrors"
	"movie-booking/internal/config"
	"movie-booking/internal/events"
	"movie-booking/internal/models"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		TMDB: config.TMDBConfig{ImageURL: "https://image.tmdb.org/t/p/w500"},
		Booking: config.BookingConfig{
			HoldTTL:            5 * time.Minute,
			SeatPriceCents:     1299,
			ServiceChargeCents: 199,
			DefaultRows:        8,
			DefaultSeatsPerRow: 8,
			MaxSeatsPerOrder:   10,
		},
		Cache: config.CacheConfig{Size: 16, TTL: time.Minute},
	}
}

// fakeMovieRepo keeps movies in memory.
type fakeMovieRepo struct {
	mu           sync.Mutex
	nextID       uint
	movies       map[uint]models.Movie
	findCalls    int
	activeOrders map[uint]bool
	syncLogs     []models.SyncLog
	lastFilter   models.MovieFilter
}

func newFakeMovieRepo() *fakeMovieRepo {
	return &fakeMovieRepo{movies: map[uint]models.Movie{}, activeOrders: map[uint]bool{}}
}

func (r *fakeMovieRepo) Create(_ context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	movie.ID = r.nextID
	movie.CreatedAt = time.Now()
	movie.UpdatedAt = movie.CreatedAt
	r.movies[movie.ID] = *movie
	return nil
}

func (r *fakeMovieRepo) Update(_ context.Context, movie *models.Movie) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[movie.ID]; !ok {
		return apperrors.NewNotFoundError("movie", movie.ID)
	}
	movie.UpdatedAt = time.Now()
	r.movies[movie.ID] = *movie
	return nil
}

func (r *fakeMovieRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.movies[id]; !ok {
		return apperrors.NewNotFoundError("movie", id)
	}
	delete(r.movies, id)
	return nil
}

func (r *fakeMovieRepo) FindByID(_ context.Context, id uint) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findCalls++
	m, ok := r.movies[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("movie", id)
	}
	m.Present()
	return &m, nil
}

func (r *fakeMovieRepo) FindByTMDBID(_ context.Context, tmdbID int) (*models.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movies {
		if m.TMDBID != nil && *m.TMDBID == tmdbID {
			m := m
			return &m, nil
		}
	}
	return nil, nil
}

func (r *fakeMovieRepo) FindAll(_ context.Context, filter models.MovieFilter) ([]models.Movie, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFilter = filter
	ids := make([]int, 0, len(r.movies))
	for id := range r.movies {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	var out []models.Movie
	for _, id := range ids {
		m := r.movies[uint(id)]
		m.Present()
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *fakeMovieRepo) HasActiveOrders(_ context.Context, movieID uint) (bool, error) {
	return r.activeOrders[movieID], nil
}

func (r *fakeMovieRepo) GetDashboardStats(context.Context) (*models.DashboardStats, error) {
	return &models.DashboardStats{TotalMovies: int64(len(r.movies))}, nil
}

func (r *fakeMovieRepo) CreateSyncLog(_ context.Context, log *models.SyncLog) error {
	r.syncLogs = append(r.syncLogs, *log)
	return nil
}

func (r *fakeMovieRepo) GetLastSyncLog(context.Context) (*models.SyncLog, error) {
	if len(r.syncLogs) == 0 {
		return nil, nil
	}
	l := r.syncLogs[len(r.syncLogs)-1]
	return &l, nil
}

func (r *fakeMovieRepo) GetMoviesByGenre(context.Context) ([]models.ChartData, error) {
	return nil, nil
}

func (r *fakeMovieRepo) GetMoviesByYear(context.Context, string, string) ([]models.ChartData, error) {
	return nil, nil
}

func (r *fakeMovieRepo) GetMoviesByMonth(context.Context, int) ([]models.ChartData, error) {
	return nil, nil
}

type fakeGenreRepo struct {
	mu     sync.Mutex
	genres []models.Genre
}

func (r *fakeGenreRepo) FindOrCreate(_ context.Context, name string) (*models.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.genres {
		if strings.EqualFold(g.Name, name) {
			g := g
			return &g, nil
		}
	}
	g := models.Genre{ID: uint(len(r.genres) + 1), Name: name}
	r.genres = append(r.genres, g)
	return &g, nil
}

func (r *fakeGenreRepo) FindAll(context.Context) ([]models.Genre, error) {
	return r.genres, nil
}

type fakeBanners struct {
	deleted []string
}

func (b *fakeBanners) PresignUpload(context.Context, string, string) (*UploadTicket, error) {
	return &UploadTicket{}, nil
}

func (b *fakeBanners) IsManaged(bannerURL string) bool {
	return strings.HasPrefix(bannerURL, "http://minio.local/banners/")
}

func (b *fakeBanners) Delete(_ context.Context, bannerURL string) error {
	b.deleted = append(b.deleted, bannerURL)
	return nil
}

type fakeTMDB struct {
	pages map[int][]models.TMDBMovieResponse
	err   error
}

func (f *fakeTMDB) PopularMovies(_ context.Context, page int) ([]models.TMDBMovieResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pages[page], nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.NewConflictError("email is already registered", user.Email)
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("user", id)
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// fakeShowtimeRepo also owns the sold seats so it can share state with fakeOrderRepo.
type fakeShowtimeRepo struct {
	mu        sync.Mutex
	nextID    uint
	showtimes map[uint]models.Showtime
	sold      map[uint]map[string]uint // showtime -> seat -> order
	orders    *fakeOrderRepo
}

func newFakeShowtimeRepo() *fakeShowtimeRepo {
	return &fakeShowtimeRepo{showtimes: map[uint]models.Showtime{}, sold: map[uint]map[string]uint{}}
}

func (r *fakeShowtimeRepo) Create(_ context.Context, s *models.Showtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	s.ID = r.nextID
	r.showtimes[s.ID] = *s
	return nil
}

func (r *fakeShowtimeRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.showtimes[id]; !ok {
		return apperrors.NewNotFoundError("showtime", id)
	}
	delete(r.showtimes, id)
	return nil
}

func (r *fakeShowtimeRepo) FindByID(_ context.Context, id uint) (*models.Showtime, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.showtimes[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("showtime", id)
	}
	return &s, nil
}

func (r *fakeShowtimeRepo) ListByMovie(_ context.Context, movieID uint, from time.Time) ([]models.Showtime, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Showtime
	for _, s := range r.showtimes {
		if s.MovieID == movieID && !s.StartsAt.Before(from) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r *fakeShowtimeRepo) HasConfirmedOrders(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sold[id]) > 0, nil
}

func (r *fakeShowtimeRepo) SoldSeats(_ context.Context, id uint) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for seat := range r.sold[id] {
		out = append(out, seat)
	}
	sort.Strings(out)
	return out, nil
}

type fakeOrderRepo struct {
	showtimes *fakeShowtimeRepo
	nextID    uint
	orders    map[uint]models.Order
}

func newFakeOrderRepo(showtimes *fakeShowtimeRepo) *fakeOrderRepo {
	r := &fakeOrderRepo{showtimes: showtimes, orders: map[uint]models.Order{}}
	showtimes.orders = r
	return r
}

func (r *fakeOrderRepo) Create(_ context.Context, order *models.Order) error {
	r.showtimes.mu.Lock()
	defer r.showtimes.mu.Unlock()
	sold := r.showtimes.sold[order.ShowtimeID]
	if sold == nil {
		sold = map[string]uint{}
		r.showtimes.sold[order.ShowtimeID] = sold
	}
	var taken []string
	for _, seat := range order.SeatLabels {
		if _, ok := sold[seat]; ok {
			taken = append(taken, seat)
		}
	}
	if len(taken) > 0 {
		return apperrors.NewSeatsUnavailableError(taken)
	}
	r.nextID++
	order.ID = r.nextID
	order.CreatedAt = time.Now()
	for _, seat := range order.SeatLabels {
		sold[seat] = order.ID
	}
	r.orders[order.ID] = *order
	return nil
}

func (r *fakeOrderRepo) Cancel(_ context.Context, order *models.Order, at time.Time) error {
	r.showtimes.mu.Lock()
	defer r.showtimes.mu.Unlock()
	for seat, id := range r.showtimes.sold[order.ShowtimeID] {
		if id == order.ID {
			delete(r.showtimes.sold[order.ShowtimeID], seat)
		}
	}
	order.Status = models.OrderStatusCancelled
	order.CancelledAt = &at
	stored := r.orders[order.ID]
	stored.Status = order.Status
	stored.CancelledAt = order.CancelledAt
	r.orders[order.ID] = stored
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uint) (*models.Order, error) {
	r.showtimes.mu.Lock()
	defer r.showtimes.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("order", id)
	}
	if st, ok := r.showtimes.showtimes[o.ShowtimeID]; ok {
		o.Showtime = &st
	}
	return &o, nil
}

func (r *fakeOrderRepo) ListByUser(_ context.Context, userID uint) ([]models.Order, error) {
	r.showtimes.mu.Lock()
	defer r.showtimes.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.BookingConfirmed
	err    error
}

func (p *fakePublisher) PublishBookingConfirmed(_ context.Context, ev events.BookingConfirmed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) Close() error { return nil }
