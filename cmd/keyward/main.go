//go:generate swag init -g router.go -d ../../internal/keyward/http,../../pkg/keywardsdk,../../pkg/licensekey -o ../../api/keyward --outputTypes go --packageName keyward

package main

import (
	"log"

	"github.com/aussiebroadwan/keyward/internal/keyward/app"
)

func main() {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
