// cmd/harvest/main.go
package main

import (
	"github.com/histia/harvest/internal/cli"
)

func main() {
	// Signal handling lives in the serve command; one-shot commands are
	// interruptible through context cancellation.
	cli.Execute()
}
