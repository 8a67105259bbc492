package routes

import (
	"bikerent-server/models"
	"bikerent-server/services"
	"bikerent-server/utils"
	"errors"
	"io"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

type CreateReservationInput struct {
	Plan string `json:"plan" validate:"max=32"`
}

// reservationView is a reservation with the bike and plan it refers to, as
// shown on the dashboard.
type reservationView struct {
	models.Reservation
	Bike     *models.Bike `json:"bike,omitempty"`
	PlanInfo *models.Plan `json:"planInfo,omitempty"`
}

// CreateReservation reserves the bike for the caller and takes it out of
// the available fleet until the reservation is cancelled.
func (api *API) CreateReservation(ctx iris.Context) {
	var input CreateReservationInput
	// A body-less request picks its plan from the query string.
	err := ctx.ReadJSON(&input)
	if err != nil && !errors.Is(err, io.EOF) {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Plan == "" {
		input.Plan = ctx.URLParam("plan")
	}

	reservation, err := api.Ledger.Create(ctx.Request().Context(),
		utils.GetUserID(ctx),
		ctx.Params().Get("id"),
		input.Plan)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	golog.Infof("reservation %s created for bike %s", reservation.ID, reservation.BikeID)
	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(reservation)
}

// GetUserReservations is the dashboard: the caller's reservations, newest
// first.
func (api *API) GetUserReservations(ctx iris.Context) {
	reservations, err := api.Ledger.ListForUser(ctx.Request().Context(), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	views := make([]reservationView, 0, len(reservations))
	for _, reservation := range reservations {
		views = append(views, api.viewReservation(ctx, reservation))
	}

	ctx.JSON(iris.Map{
		"reservations": views,
		"count":        len(views),
	})
}

func (api *API) GetReservation(ctx iris.Context) {
	reservation, err := api.Ledger.Get(ctx.Request().Context(), ctx.Params().Get("id"), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.JSON(api.viewReservation(ctx, *reservation))
}

// CancelReservation frees the bike. Unknown ids and other users'
// reservations are ignored, so the call always succeeds.
func (api *API) CancelReservation(ctx iris.Context) {
	err := api.Ledger.Cancel(ctx.Request().Context(), ctx.Params().Get("id"), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	utils.JSONMessage(ctx, iris.StatusOK, "Reservation cancelled")
}

func (api *API) viewReservation(ctx iris.Context, reservation models.Reservation) reservationView {
	view := reservationView{Reservation: reservation}

	bike, err := api.Catalog.Get(ctx.Request().Context(), reservation.BikeID)
	if err == nil {
		view.Bike = bike
	}

	if plan, err := services.LookupPlan(reservation.PlanKey); err == nil {
		view.PlanInfo = &plan
	}

	return view
}
