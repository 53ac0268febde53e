// Command calctl runs the calendar drag calculations from the command line, printing
// the resulting time patch as JSON.
package main

import (
	"os"
	_ "time/tzdata"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
