// services/qrcode_service.go
package services

import (
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
)

// GenerateJoinQRCode creates a PNG QR code pointing at the join page for the
// given competition code.
func GenerateJoinQRCode(code string, size int) ([]byte, error) {
	applicationURL := os.Getenv("APPLICATION_URL")
	if applicationURL == "" {
		applicationURL = "http://localhost:8080" // Default for local testing
	}

	joinURL := fmt.Sprintf("%s/join?code=%s", applicationURL, code)
	png, err := qrcode.Encode(joinURL, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}
