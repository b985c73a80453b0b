package main

import "resumebuilder/internal/app"

// @title           Resume Builder API
// @version         1.0
// @description     Backend for building, storing and exporting resumes.
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	app.Run()
}
