package routes

import (
	"bikerent-server/models"
	"bikerent-server/utils"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

func (api *API) Register(ctx iris.Context) {
	var userInput RegisterUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if userInput.Phone != "" && !utils.ValidatePhoneNumber(userInput.Phone) {
		utils.CreateError(iris.StatusBadRequest, "Validation Error", "Invalid phone number format.", ctx)
		return
	}

	newUser, err := api.Accounts.Register(ctx.Request().Context(),
		userInput.Name,
		userInput.Email,
		userInput.Password,
		utils.NormalizePhoneNumber(userInput.Phone))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	api.returnUser(*newUser, ctx)
}

func (api *API) Login(ctx iris.Context) {
	var userInput LoginUserInput
	err := ctx.ReadJSON(&userInput)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	existingUser, err := api.Accounts.Authenticate(ctx.Request().Context(), userInput.Email, userInput.Password)
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	api.returnUser(*existingUser, ctx)
}

// Logout blocks the access token, forgets the refresh token if one is sent
// and clears the session cookie.
func (api *API) Logout(ctx iris.Context) {
	if err := ctx.Logout(); err != nil {
		golog.Warnf("logout: %v", err)
	}

	var tokenInput utils.RefreshTokenInput
	if err := ctx.ReadJSON(&tokenInput); err == nil && tokenInput.RefreshToken != "" {
		if err := api.Tokens.RevokeRefreshToken(ctx.Request().Context(), tokenInput.RefreshToken); err != nil {
			golog.Errorf("revoke refresh token: %v", err)
		}
	}

	utils.ClearAccessCookie(ctx)
	utils.JSONMessage(ctx, iris.StatusOK, "Logged out")
}

func (api *API) GetMe(ctx iris.Context) {
	user, err := api.Accounts.GetByID(ctx.Request().Context(), utils.GetUserID(ctx))
	if err != nil {
		utils.CreateServiceError(err, ctx)
		return
	}

	ctx.JSON(user)
}

func (api *API) returnUser(user models.User, ctx iris.Context) {
	tokenPair, tokenErr := api.Tokens.CreateTokenPair(ctx.Request().Context(), user.ID)
	if tokenErr != nil {
		golog.Errorf("create token pair: %v", tokenErr)
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.SetAccessCookie(ctx, tokenPair.AccessToken)
	ctx.JSON(iris.Map{
		"ID":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"phone":        user.Phone,
		"accessToken":  tokenPair.AccessToken,
		"refreshToken": tokenPair.RefreshToken,
	})
}

// Presence and password length are checked by AccountService so the HTTP
// and service layers report the same errors.
type RegisterUserInput struct {
	Name     string `json:"name" validate:"max=256"`
	Email    string `json:"email" validate:"max=256"`
	Password string `json:"password" validate:"max=256"`
	Phone    string `json:"phone" validate:"max=32"`
}

type LoginUserInput struct {
	Email    string `json:"email" validate:"max=256"`
	Password string `json:"password" validate:"max=256"`
}
