package main

import (
	"dcmstream/internal/app"
	"dcmstream/internal/appshell"
)

func main() {
	appshell.Main(app.RunContext)
}
