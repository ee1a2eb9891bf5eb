package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ndtoan/meeting-server/config"
	"github.com/ndtoan/meeting-server/controllers"
	"github.com/ndtoan/meeting-server/routes"
	"github.com/ndtoan/meeting-server/utils"
)

func main() {
	// .env is optional; production sets real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using process environment")
	}

	config.ConnectDB()
	controllers.Init(utils.NewSMTPMailer(), os.Getenv("BASE_URL"))

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return origin == os.Getenv("FRONTEND_ORIGIN") || origin == "http://localhost:5173"
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Meeting server is running")
	})

	if err := r.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on port %s\n", port)
	r.Run(":" + port)
}
