package main

import (
	"errors"
	"log"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			log.Printf("ip_filter: %v", err)
		}
		os.Exit(1)
	}
}
