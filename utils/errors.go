package utils

import (
	"bikerent-server/services"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

type validationError struct {
	ActualTag string `json:"tag"`
	Namespace string `json:"namespace"`
	Kind      string `json:"kind"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Param     string `json:"param"`
}

func CreateError(statusCode int, title, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().Title(title).Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "Internal Server Error", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Not Found", ctx)
}

func HandleValidationErrors(err error, ctx iris.Context) {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		ctx.StopWithProblem(iris.StatusBadRequest, iris.NewProblem().
			Title("Validation Error").
			Detail("One or more fields failed to be validated").
			Key("errors", wrapValidationErrors(errs)))
		return
	}

	CreateError(iris.StatusBadRequest, "Bad Request", "Malformed request body", ctx)
}

func wrapValidationErrors(errs validator.ValidationErrors) []validationError {
	validationErrors := make([]validationError, 0, len(errs))
	for _, validationErr := range errs {
		validationErrors = append(validationErrors, validationError{
			ActualTag: validationErr.ActualTag(),
			Namespace: validationErr.Namespace(),
			Kind:      validationErr.Kind().String(),
			Type:      validationErr.Type().String(),
			Value:     toString(validationErr.Value()),
			Param:     validationErr.Param(),
		})
	}

	return validationErrors
}

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// CreateServiceError reports a services error kind as a problem response.
// Unknown errors are logged and hidden behind a 500.
func CreateServiceError(err error, ctx iris.Context) {
	switch {
	case errors.Is(err, services.ErrBikeUnavailable):
		CreateError(iris.StatusConflict, "Reservation Error", "Bike not available.", ctx)
	case errors.Is(err, services.ErrInvalidPlan):
		CreateError(iris.StatusBadRequest, "Reservation Error", "Invalid plan.", ctx)
	case errors.Is(err, services.ErrNotFound):
		CreateError(iris.StatusNotFound, "Not Found", "Not found.", ctx)
	case errors.Is(err, services.ErrMissingFields):
		CreateError(iris.StatusBadRequest, "Validation Error", "All fields are required.", ctx)
	case errors.Is(err, services.ErrWeakPassword):
		CreateError(iris.StatusBadRequest, "Validation Error", "Password must be at least 6 characters.", ctx)
	case errors.Is(err, services.ErrDuplicateEmail):
		CreateEmailAlreadyRegistered(ctx)
	case errors.Is(err, services.ErrInvalidCredentials):
		CreateError(iris.StatusUnauthorized, "Credentials Error", "Invalid email or password.", ctx)
	case errors.Is(err, services.ErrGatewayUnavailable):
		CreateError(iris.StatusServiceUnavailable, "Payment Error", "Payment temporarily unavailable. Please contact support.", ctx)
	case errors.Is(err, services.ErrGateway):
		CreateError(iris.StatusBadGateway, "Payment Error", err.Error(), ctx)
	default:
		golog.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		CreateInternalServerError(ctx)
	}
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "Registration Error", "Email already registered.", ctx)
}
