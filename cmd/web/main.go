// @title           RapidMandados API
// @version         1.0
// @description     API платформы доставки заказов (клиенты, водители, админка).
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:4000
// @BasePath        /api/v1

package main

import "rapidmandados_backend/internal/app"

func main() {
	app.Run()
}
