// server renders Buddhabrot images over http.
//
//	GET /render?width=W&height=H&points=N[&precision=32|64][&view=NAME][&maxiter=N][&rotate=DEG]
//	GET /ws    websocket feed with the progress of the current render
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	port := flag.Int("port", 8080, "http port")
	origin := flag.String("origin", "", "comma separated host patterns, e.g. \"*.example.com\", allowed to open /ws from other origins")
	flag.Parse()

	var origins []string
	if *origin != "" {
		origins = strings.Split(*origin, ",")
	}

	// one scheduler backs both the image endpoint and the progress feed
	rs := newRenderScheduler()
	httpServer := webServer(*port, origins, rs)

	log.Printf("bbrot server waiting for render requests")
	if err := httpServer.ListenAndServe(); err != nil {
		return fmt.Errorf("httpServer: %w", err)
	}
	return nil
}
