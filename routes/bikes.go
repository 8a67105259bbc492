package routes

import (
	"bikerent-server/services"
	"bikerent-server/utils"

	"github.com/kataras/iris/v12"
)

// GetBikes lists the fleet. ?type= narrows by bike type and
// ?available=true hides reserved bikes.
func (api *API) GetBikes(ctx iris.Context) {
	filter := services.BikeFilter{
		Type:          ctx.URLParam("type"),
		AvailableOnly: ctx.URLParam("available") == "true",
	}

	bikes, err := api.Catalog.List(ctx.Request().Context(), filter)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{
		"bikes": bikes,
		"count": len(bikes),
	})
}

func (api *API) GetBike(ctx iris.Context) {
	bike, err := api.Catalog.Get(ctx.Request().Context(), ctx.Params().Get("id"))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.JSON(iris.Map{
		"bike":  bike,
		"plans": services.Plans(),
	})
}

func GetPlans(ctx iris.Context) {
	ctx.JSON(iris.Map{"plans": services.Plans()})
}
