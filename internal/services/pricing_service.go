package services

import (
	"context"
	"math"
	"os"
	"strconv"

	"drivedrop-backend/internal/services/geo"
)

// PricingService расчет предварительной стоимости отправки по маршруту
type PricingService struct {
	geoClient  *geo.Client
	basePrice  float64
	pricePerKm float64
}

// Quote предварительная стоимость отправки
type Quote struct {
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
}

func NewPricingService(geoClient *geo.Client) *PricingService {
	basePrice := 50.0
	if v, err := strconv.ParseFloat(os.Getenv("PRICE_BASE"), 64); err == nil && v > 0 {
		basePrice = v
	}
	pricePerKm := 1.2
	if v, err := strconv.ParseFloat(os.Getenv("PRICE_PER_KM"), 64); err == nil && v > 0 {
		pricePerKm = v
	}

	return &PricingService{
		geoClient:  geoClient,
		basePrice:  basePrice,
		pricePerKm: pricePerKm,
	}
}

// QuoteShipment строит маршрут и считает стоимость.
// Итоговая цена округляется до целых.
func (s *PricingService) QuoteShipment(ctx context.Context, fromLat, fromLng, toLat, toLng float64) (*Quote, error) {
	route, err := s.geoClient.GetRoute(ctx, fromLat, fromLng, toLat, toLng)
	if err != nil {
		return nil, err
	}

	distanceKm := float64(route.DistanceMeters) / 1000.0
	price := math.Round(s.basePrice + s.pricePerKm*distanceKm)

	return &Quote{
		DistanceKm:      math.Round(distanceKm*10) / 10,
		DurationMinutes: route.DurationSeconds / 60,
		Price:           price,
	}, nil
}
