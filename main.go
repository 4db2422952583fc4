package main

import "github.com/fenilmodi00/flightme-backend/cmd"

func main() {
	cmd.Execute()
}
