package routes

import (
	"bikerent-server/services"
	"bikerent-server/utils"
	"strconv"

	"github.com/kataras/iris/v12"
)

const defaultNearRadiusKm = 2.0

// GetLocations lists the named spots the map can centre on.
func GetLocations(ctx iris.Context) {
	keys := services.GetLocationKeysByPriority()
	locations := make([]iris.Map, 0, len(keys))
	for _, key := range keys {
		location, _ := services.GetLocationInfo(key)
		locations = append(locations, iris.Map{
			"key":      key,
			"location": location,
		})
	}

	ctx.JSON(iris.Map{"locations": locations})
}

// GetBikesNear returns bikes within radius km of a point, closest first.
// The point is either ?lat=&lng= or a named ?location= whose own radius is
// the default.
func (api *API) GetBikesNear(ctx iris.Context) {
	var lat, lng float64
	radius := defaultNearRadiusKm

	if locationKey := ctx.URLParam("location"); locationKey != "" {
		location, exists := services.GetLocationInfo(locationKey)
		if !exists {
			utils.CreateError(iris.StatusNotFound, "Not Found", "Location not found", ctx)
			return
		}
		lat, lng, radius = location.Lat, location.Lng, location.Radius
	} else {
		var err error
		lat, err = strconv.ParseFloat(ctx.URLParam("lat"), 64)
		if err != nil || lat < -90 || lat > 90 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid latitude", ctx)
			return
		}

		lng, err = strconv.ParseFloat(ctx.URLParam("lng"), 64)
		if err != nil || lng < -180 || lng > 180 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid longitude", ctx)
			return
		}
	}

	if radiusStr := ctx.URLParam("radius"); radiusStr != "" {
		r, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || r <= 0 {
			utils.CreateError(iris.StatusBadRequest, "Bad Request", "Invalid radius", ctx)
			return
		}
		radius = r
	}

	bikes, err := api.Catalog.Near(ctx.Request().Context(), lat, lng, radius)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{
		"bikes": bikes,
		"count": len(bikes),
		"center": iris.Map{
			"lat": lat,
			"lng": lng,
		},
		"radius": radius,
	})
}
