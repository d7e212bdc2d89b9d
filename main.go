package main

import (
	"barricade.gg/backend/cmd/app"
)

func main() {
	app.Run()
}
