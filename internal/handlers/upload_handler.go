package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"drivedrop-backend/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UploadFile принимает multipart-файл и сохраняет его в S3, если хранилище
// настроено, иначе на локальный диск в поддиректорию по дате
func UploadFile(uploader *storage.Uploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Файл не найден"})
			return
		}

		ext := filepath.Ext(file.Filename)
		newFileName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
		now := time.Now()

		if uploader != nil {
			src, err := file.Open()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при чтении файла"})
				return
			}
			defer src.Close()

			objectKey := fmt.Sprintf("uploads/%s/%s", now.Format("2006/01/02"), newFileName)
			contentType := file.Header.Get("Content-Type")

			url, err := uploader.UploadFile(c.Request.Context(), src, objectKey, contentType)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при загрузке файла в хранилище"})
				return
			}

			c.JSON(http.StatusOK, gin.H{"url": url})
			return
		}

		// Локальный диск для разработки
		dateDir := filepath.Join("uploads", now.Format("2006/01/02"))
		if err := os.MkdirAll(dateDir, 0755); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при создании директории"})
			return
		}

		filePath := filepath.Join(dateDir, newFileName)
		if err := c.SaveUploadedFile(file, filePath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Ошибка при сохранении файла"})
			return
		}

		fileURL := fmt.Sprintf("/uploads/%s/%s", now.Format("2006/01/02"), newFileName)
		c.JSON(http.StatusOK, gin.H{"url": fileURL})
	}
}
