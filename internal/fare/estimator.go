package fare

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ukydev/ride-dispatch/internal/maps"
	"github.com/ukydev/ride-dispatch/internal/models"
)

// ErrQuoteUnavailable means a fare could not be computed for the given
// addresses. Callers must not create a ride on this failure.
var ErrQuoteUnavailable = errors.New("fare quote unavailable")

// Pricing constants per vehicle class, in whole currency units.
var (
	baseFare = map[models.VehicleClass]float64{
		models.ClassStandard: 50,
		models.ClassMoto:     20,
		models.ClassAuto:     30,
	}
	perKmRate = map[models.VehicleClass]float64{
		models.ClassStandard: 15,
		models.ClassMoto:     8,
		models.ClassAuto:     10,
	}
)

// Estimator turns a pair of addresses into a per-class fare quote.
type Estimator struct {
	oracle maps.Oracle
}

// NewEstimator creates a fare estimator backed by a geocoding oracle.
func NewEstimator(oracle maps.Oracle) *Estimator {
	return &Estimator{oracle: oracle}
}

// Estimate resolves both addresses, routes between them and prices the trip
// for every vehicle class: base + perKm * distanceKm, rounded to the nearest
// whole unit.
func (e *Estimator) Estimate(ctx context.Context, pickup, destination string) (*models.FareQuote, error) {
	origin, err := e.oracle.ResolveAddress(ctx, pickup)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup: %v", ErrQuoteUnavailable, err)
	}
	dest, err := e.oracle.ResolveAddress(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("%w: destination: %v", ErrQuoteUnavailable, err)
	}

	route, err := e.oracle.Route(ctx, origin, dest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuoteUnavailable, err)
	}

	distanceKm := route.DistanceMeters / 1000

	return &models.FareQuote{
		Standard: price(models.ClassStandard, distanceKm),
		Moto:     price(models.ClassMoto, distanceKm),
		Auto:     price(models.ClassAuto, distanceKm),
		Distance: fmt.Sprintf("%.1f km", distanceKm),
		Duration: fmt.Sprintf("%d mins", int(math.Round(route.DurationSeconds/60))),
	}, nil
}

func price(class models.VehicleClass, distanceKm float64) int {
	return int(math.Round(baseFare[class] + distanceKm*perKmRate[class]))
}
