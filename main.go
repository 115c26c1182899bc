package main

import (
	_ "waitlist/docs"
	"waitlist/internal/cli"
)

// @Title						Лист ожидания мероприятия
// @Version					1.0
// @BasePath					/api
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cli.Execute()
}
