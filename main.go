package main

import (
	"os"

	"blog/cmd"
)

// @title Blog API
// @version 1.0
// @description Read-mostly JSON API over the blog's published posts, comments and taxonomy

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
