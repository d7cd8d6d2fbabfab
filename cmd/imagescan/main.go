// Command imagescan replays the service's response parsing over a saved
// provider response, for debugging "no images" failures offline.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
