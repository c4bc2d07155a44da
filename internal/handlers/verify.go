package handlers

import (
	"fmt"
	"image"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cristianadrielbraun/qretty/pkg/verify"
)

const maxUpload = 8 << 20

type verifyResponse struct {
	Raw          verify.Readability  `json:"raw"`
	Deteriorated *verify.Readability `json:"deteriorated,omitempty"`
}

// VerifyHandler scores an uploaded image against the expected content.
func (h *Handler) VerifyHandler(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)

	expected, ok := c.GetPostForm("expected")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected field is required"})
		return
	}
	deteriorate := true
	if v := c.PostForm("deteriorate"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "deteriorate must be a boolean"})
			return
		}
		deteriorate = b
	}

	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to open upload: %v", err)})
		return
	}
	defer f.Close()
	img, format, err := image.Decode(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to decode image: %v", err)})
		return
	}

	var resp verifyResponse
	if deteriorate {
		raw, det := h.verifier.VerifyQuality(img, expected)
		resp.Raw, resp.Deteriorated = raw, &det
	} else {
		resp.Raw = h.verifier.Verify(img, expected, false)
	}
	h.logger.Info("verified", "format", format, "size", img.Bounds().Size(), "raw", resp.Raw)
	c.JSON(http.StatusOK, resp)
}
