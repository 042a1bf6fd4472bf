// @title           Visa API
// @version         1.0
// @description     API визового сервиса: заявки, подписки, оценка вероятности (документация Swagger).
// @contact.name    Visa Service
// @contact.email   support@visa.test
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

package main

import "github.com/Znbmels/visa/internal/app"

func main() {
	app.Run()
}
