// Command storefront serves the store API and runs its maintenance tasks:
//
//	storefront serve --migrate
//	storefront migrate
//	storefront seed
//	storefront route:list
package main

import (
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/app"
	"github.com/shashiranjanraj/storefront/pkg/router"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
)

func main() {
	app.New("storefront").
		Routes(func(r *router.Router, rt *app.Runtime) error {
			d := routes.Deps{DB: rt.DB, Disk: rt.Disk}
			if rt.Hub != nil {
				d.OrderFeed = rt.Hub
			}
			return routes.RegisterAPI(r, d)
		}).
		OnBoot(func(rt *app.Runtime) func() {
			var pub listeners.Publisher
			if rt.Kafka != nil {
				pub = rt.Kafka
			}
			return listeners.RegisterOrders(rt.Hub, pub)
		}).
		Seed(seeders.RunAll).
		Execute()
}
