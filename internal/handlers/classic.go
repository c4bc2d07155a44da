package handlers

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"image/color"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"

	"github.com/cristianadrielbraun/qretty/pkg/encoder"
)

// ClassicQR renders a plain square-module symbol with the yeqown standard
// writer, for side-by-side comparison with the styled output.
func (h *Handler) ClassicQR(c *gin.Context) {
	data, err := payloadParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	level := encoder.Q
	if v := c.Query("level"); v != "" {
		if level, err = encoder.ParseLevel(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	size, err := intParam(c, "size", h.cfg.Render.Size, minSize, h.cfg.Server.MaxSize)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fg, err := parseColorParam(c.Query("fg"), color.Black)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bg, err := parseColorParam(c.Query("bgcolor"), color.White)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	qrc, err := qrcode.NewWith(data, encoder.YeqownOptions(level)...)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fmt.Sprintf("Failed to create QR code: %v", err)})
		return
	}

	// One quiet module on each side, as the styled renderer does.
	dim := qrc.Dimension() + 2*encoder.QuietZone
	moduleSize := size / dim
	if moduleSize < 1 {
		moduleSize = 1
	}
	if moduleSize > 255 {
		moduleSize = 255
	}

	tmpFile := filepath.Join(os.TempDir(), generateUniqueFilename("qr_classic", ".png"))
	defer os.Remove(tmpFile)

	writer, err := standard.New(tmpFile,
		standard.WithQRWidth(uint8(moduleSize)),
		standard.WithBorderWidth(moduleSize*encoder.QuietZone),
		standard.WithBgColor(bg),
		standard.WithFgColor(fg),
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to create QR writer: %v", err)})
		return
	}
	if err := qrc.Save(writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to save QR code: %v", err)})
		return
	}
	writer.Close()

	img, err := imaging.Open(tmpFile)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to read QR code: %v", err)})
		return
	}
	// Integer module widths rarely land on size exactly.
	if img.Bounds().Dx() != size {
		img = imaging.Resize(img, size, size, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to encode image: %v", err)})
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// generateUniqueFilename creates a unique filename to prevent race conditions
func generateUniqueFilename(prefix, extension string) string {
	timestamp := time.Now().UnixNano()
	randomBytes := make([]byte, 4)
	rand.Read(randomBytes)
	return fmt.Sprintf("%s_%d_%x%s", prefix, timestamp, randomBytes, extension)
}
