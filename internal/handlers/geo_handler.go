package handlers

import (
	"net/http"

	"drivedrop-backend/internal/services/geo"

	"github.com/gin-gonic/gin"
)

// SearchAddress поиск адреса по свободному тексту через геокодер
func SearchAddress(client *geo.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Пустой поисковый запрос"})
			return
		}

		results, err := client.SearchAddress(c.Request.Context(), query)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Сервис геокодирования недоступен"})
			return
		}

		c.JSON(http.StatusOK, results)
	}
}
