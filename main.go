package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"timesheet/internal/api"
	"timesheet/internal/records"
	"timesheet/web"
)

func main() {
	setupEnvironment()

	ctx := context.Background()
	sheetsClient := initializeSheetsClient(ctx)
	notifier := initializeNotificationClient()

	repo := records.NewRepository(sheetsClient, records.Config{
		SpreadsheetID: getRequiredEnv("SPREADSHEET_ID"),
		SheetName:     getEnvWithDefault("SHEET_NAME", "作業記録"),
	})

	router := mux.NewRouter()
	api.NewHandler(repo, notifier).RegisterRoutes(router)
	router.PathPrefix("/").Handler(web.Handler())

	addr := ":" + getEnvWithDefault("PORT", "3001")
	log.Info().Str("addr", addr).Msg("Starting timesheet server")

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
