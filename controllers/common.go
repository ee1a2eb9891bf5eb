package controllers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/ndtoan/meeting-server/config"
	"github.com/ndtoan/meeting-server/services"
	"github.com/ndtoan/meeting-server/utils"
)

var (
	mailer  utils.Mailer
	baseURL string
)

// Init wires the outbound email sender and the public base URL used in
// email links. Called once from main; tests inject a fake mailer.
func Init(m utils.Mailer, url string) {
	mailer = m
	baseURL = url
	if baseURL == "" {
		baseURL = os.Getenv("BASE_URL")
	}
}

func dispatcher() *services.Dispatcher {
	return services.NewDispatcher(config.DB, mailer, baseURL)
}

// serviceError maps the service error taxonomy onto HTTP responses.
func serviceError(c *gin.Context, err error) {
	switch {
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case services.IsAuthorization(err):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case services.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}
