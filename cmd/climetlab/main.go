// Command climetlab inspects field availabilities, mirrors and loader
// documents.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
