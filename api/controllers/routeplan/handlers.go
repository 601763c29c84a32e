package routeplan

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/martinezjavi/ridepay-backend/api/responses"
	"github.com/martinezjavi/ridepay-backend/api/validators"
	internalroute "github.com/martinezjavi/ridepay-backend/internal/routeplan"
	pkgerrors "github.com/martinezjavi/ridepay-backend/pkg/errors"
	"github.com/martinezjavi/ridepay-backend/pkg/logger"
)

type etaRequest struct {
	Stops     []string                `json:"stops" validate:"required,min=1,dive,required"`
	Segments  []internalroute.Segment `json:"segments" validate:"dive"`
	StartTime string                  `json:"start_time" validate:"required"`
}

type etaResponse struct {
	Arrivals []internalroute.Arrival `json:"arrivals"`
}

type segmentPriceRequest struct {
	FullRoutePrice string `json:"full_route_price" validate:"required"`
	DistanceRatio  string `json:"distance_ratio" validate:"required"`
}

type segmentPriceResponse struct {
	Price string `json:"price"`
}

// EstimateETA returns per-stop arrival times for a planned route.
func EstimateETA(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req etaRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		arrivals, err := internalroute.EstimateArrivals(req.Stops, req.Segments, req.StartTime)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid route plan"))
			return
		}

		responses.WriteSuccess(w, etaResponse{Arrivals: arrivals})
	}
}

// SegmentPrice prices a single leg of a shared route.
func SegmentPrice(minPrice decimal.Decimal, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req segmentPriceRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		fullPrice, err := decimal.NewFromString(req.FullRoutePrice)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "full_route_price must be a decimal number"))
			return
		}
		ratio, err := decimal.NewFromString(req.DistanceRatio)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "distance_ratio must be a decimal number"))
			return
		}

		price, err := internalroute.SegmentPrice(fullPrice, ratio, minPrice)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pricing input"))
			return
		}

		responses.WriteSuccess(w, segmentPriceResponse{Price: price.StringFixed(2)})
	}
}
