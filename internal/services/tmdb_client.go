package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"movie-booking/internal/config"
	"movie-booking/internal/models"
)

// TMDBClient reads the catalogue of The Movie Database.
type TMDBClient interface {
	PopularMovies(ctx context.Context, page int) ([]models.TMDBMovieResponse, error)
}

type tmdbClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewTMDBClient(cfg config.TMDBConfig) TMDBClient {
	return &tmdbClient{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}
}

func (c *tmdbClient) PopularMovies(ctx context.Context, page int) ([]models.TMDBMovieResponse, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	q.Set("page", strconv.Itoa(page))
	q.Set("language", "en-US")
	endpoint := c.baseURL + "/movie/popular?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from TMDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("TMDB API returned status %d: %s", resp.StatusCode, string(body))
	}

	var tmdbResponse models.TMDBPopularMoviesResponse
	if err := json.NewDecoder(resp.Body).Decode(&tmdbResponse); err != nil {
		return nil, fmt.Errorf("failed to decode TMDB response: %w", err)
	}

	return tmdbResponse.Results, nil
}

var tmdbGenres = map[int]string{
	28: "Action", 12: "Adventure", 16: "Animation", 35: "Comedy", 80: "Crime",
	99: "Documentary", 18: "Drama", 10751: "Family", 14: "Fantasy", 36: "History",
	27: "Horror", 10402: "Music", 9648: "Mystery", 10749: "Romance", 878: "Science Fiction",
	10770: "TV Movie", 53: "Thriller", 10752: "War", 37: "Western",
}

// tmdbGenreName returns the genre name for a given TMDB genre ID
func tmdbGenreName(genreID int) string {
	if name, ok := tmdbGenres[genreID]; ok {
		return name
	}
	return fmt.Sprintf("Genre %d", genreID)
}
