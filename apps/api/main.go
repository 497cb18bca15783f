package main

import "os"

func main() {
	// DI=dig switches to the container-wired variant; manual wiring is the default.
	if os.Getenv("DI") == "dig" {
		startWithDig()
		return
	}
	startManual()
}
