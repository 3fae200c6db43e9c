package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/valyala/fasthttp"

	"dcmstream/internal/preview"
)

func main() {
	dataRoot := flag.String("data", "final_data", "data root holding link.csv, dicoms/ and contourfiles/")
	listen := flag.String("listen", "0.0.0.0:8093", "listen address")
	flag.Parse()

	s := &preview.Server{DataRoot: *dataRoot}
	fmt.Fprintf(os.Stderr, "serving previews for %s on %s\n", *dataRoot, *listen)
	if err := fasthttp.ListenAndServe(*listen, s.Handler); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
