// @title DocDot API
// @version 1.0
// @description Backend for DocDot, a study companion for medical students: quizzes, leaderboards, badges, study timer, AI tutor and lecture notes.

// @contact.name DocDot team

// @license.name MIT

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"docdot_backend/cmd"
	"os"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
