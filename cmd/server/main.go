package main

import "hrperf/internal/app/server"

func main() {
	server.Run()
}
