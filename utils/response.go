package utils

import (
	"github.com/kataras/iris/v12"
)

func JSONMessage(ctx iris.Context, status int, message string) {
	ctx.StatusCode(status)
	ctx.JSON(iris.Map{"message": message})
}
