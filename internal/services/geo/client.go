package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"drivedrop-backend/internal/middleware"

	"go.uber.org/zap"
)

// Client клиент картографического API для геокодирования и маршрутов.
// Запросы ограничены по частоте и дневному лимиту, ответы кэшируются в Redis.
type Client struct {
	apiKey        string
	baseURL       string
	httpClient    *http.Client
	cacheService  *CacheService
	logger        *zap.Logger
	rateLimiter   *time.Ticker
	requestsMutex sync.Mutex
	requestsCount int
	requestsLimit int
	resetTime     time.Time
}

// SearchResult найденный адрес
type SearchResult struct {
	Name      string  `json:"name"`
	FullName  string  `json:"full_name"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Route построенный маршрут
type Route struct {
	DistanceMeters  int `json:"distance"`
	DurationSeconds int `json:"duration"`
}

type searchResponse struct {
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"meta"`
	Result struct {
		Items []struct {
			Name     string `json:"name"`
			FullName string `json:"full_name"`
			Point    struct {
				Lat float64 `json:"lat"`
				Lon float64 `json:"lon"`
			} `json:"point"`
		} `json:"items"`
	} `json:"result"`
}

type routeResponse struct {
	Meta struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"meta"`
	Result struct {
		Routes []struct {
			Distance int `json:"distance"`
			Duration int `json:"duration"`
		} `json:"routes"`
	} `json:"result"`
}

// NewClient создает клиент картографического API
func NewClient(apiKey string, logger *zap.Logger) *Client {
	baseURL := os.Getenv("GEO_API_URL")
	if baseURL == "" {
		baseURL = "https://catalog.api.2gis.com/3.0"
	}

	// По умолчанию 5000 запросов в день
	requestsLimit := 5000
	if limitStr := os.Getenv("GEO_DAILY_LIMIT"); limitStr != "" {
		if val, err := strconv.Atoi(limitStr); err == nil && val > 0 {
			requestsLimit = val
		}
	}

	return &Client{
		apiKey:        apiKey,
		baseURL:       baseURL,
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		cacheService:  NewCacheService(),
		logger:        logger,
		rateLimiter:   time.NewTicker(200 * time.Millisecond), // Максимум 5 запросов в секунду
		requestsLimit: requestsLimit,
		resetTime:     time.Now().Add(24 * time.Hour),
	}
}

// checkRateLimit проверяет лимит запросов и ожидает, если необходимо
func (c *Client) checkRateLimit() error {
	c.requestsMutex.Lock()
	defer c.requestsMutex.Unlock()

	if time.Now().After(c.resetTime) {
		c.requestsCount = 0
		c.resetTime = time.Now().Add(24 * time.Hour)
	}

	if c.requestsCount >= c.requestsLimit {
		return fmt.Errorf("превышен дневной лимит запросов к гео-API (%d)", c.requestsLimit)
	}

	<-c.rateLimiter.C

	c.requestsCount++
	return nil
}

// SearchAddress ищет адреса по строке запроса
func (c *Client) SearchAddress(ctx context.Context, query string) ([]SearchResult, error) {
	cacheKey := c.cacheService.GenerateGeocodingKey(query)

	var cached []SearchResult
	found, err := c.cacheService.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		middleware.TrackGeoRequest("search", "200", true, 0)
		return cached, nil
	}

	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	start := time.Now()
	endpoint := fmt.Sprintf("%s/items?q=%s&fields=items.point,items.full_name&key=%s",
		c.baseURL, url.QueryEscape(query), c.apiKey)

	var parsed searchResponse
	status, err := c.doGet(ctx, endpoint, &parsed)
	middleware.TrackGeoRequest("search", strconv.Itoa(status), false, time.Since(start))
	if err != nil {
		return nil, err
	}
	if parsed.Meta.Code != 0 && parsed.Meta.Code != http.StatusOK {
		return nil, fmt.Errorf("гео-API вернул ошибку: %s", parsed.Meta.Message)
	}

	results := make([]SearchResult, 0, len(parsed.Result.Items))
	for _, item := range parsed.Result.Items {
		results = append(results, SearchResult{
			Name:      item.Name,
			FullName:  item.FullName,
			Latitude:  item.Point.Lat,
			Longitude: item.Point.Lon,
		})
	}

	if err := c.cacheService.Set(ctx, cacheKey, results); err != nil {
		// Кэш не критичен для ответа
		c.logger.Warn("не удалось закэшировать результаты поиска", zap.Error(err))
	}
	return results, nil
}

// GetRoute строит маршрут между двумя точками
func (c *Client) GetRoute(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*Route, error) {
	cacheKey := c.cacheService.GenerateRouteKey(fromLat, fromLng, toLat, toLng)

	var cached Route
	found, err := c.cacheService.Get(ctx, cacheKey, &cached)
	if err == nil && found {
		middleware.TrackGeoRequest("route", "200", true, 0)
		return &cached, nil
	}

	if err := c.checkRateLimit(); err != nil {
		return nil, err
	}

	start := time.Now()
	endpoint := fmt.Sprintf("%s/routes?points=%f,%f|%f,%f&key=%s",
		c.baseURL, fromLng, fromLat, toLng, toLat, c.apiKey)

	var parsed routeResponse
	status, err := c.doGet(ctx, endpoint, &parsed)
	middleware.TrackGeoRequest("route", strconv.Itoa(status), false, time.Since(start))
	if err != nil {
		return nil, err
	}
	if len(parsed.Result.Routes) == 0 {
		return nil, fmt.Errorf("гео-API не нашел маршрут")
	}

	route := Route{
		DistanceMeters:  parsed.Result.Routes[0].Distance,
		DurationSeconds: parsed.Result.Routes[0].Duration,
	}

	if err := c.cacheService.Set(ctx, cacheKey, route); err != nil {
		c.logger.Warn("не удалось закэшировать маршрут", zap.Error(err))
	}
	return &route, nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, out interface{}) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("ошибка при создании запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ошибка при запросе к гео-API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("ошибка при чтении ответа: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, fmt.Errorf("гео-API вернул статус %d", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return resp.StatusCode, fmt.Errorf("ошибка при разборе ответа: %w", err)
	}
	return resp.StatusCode, nil
}
