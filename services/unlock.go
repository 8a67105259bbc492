package services

import (
	"encoding/base64"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Pixels per QR module; a negative size tells the encoder to scale by module.
const unlockCodeModuleSize = -10

// UnlockPayload is the string a bike lock expects to read.
func UnlockPayload(bikeID, reservationID string) string {
	return fmt.Sprintf("UNLOCK_BIKE:%s:%s", bikeID, reservationID)
}

// GenerateUnlockCode renders the unlock payload as a PNG QR code. The output
// depends only on its inputs.
func GenerateUnlockCode(bikeID, reservationID string) ([]byte, error) {
	qr, err := qrcode.New(UnlockPayload(bikeID, reservationID), qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to encode unlock code: %w", err)
	}

	png, err := qr.PNG(unlockCodeModuleSize)
	if err != nil {
		return nil, fmt.Errorf("failed to render unlock code: %w", err)
	}

	return png, nil
}

// UnlockCodeBase64 is GenerateUnlockCode encoded for inline <img> embedding.
func UnlockCodeBase64(bikeID, reservationID string) (string, error) {
	png, err := GenerateUnlockCode(bikeID, reservationID)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(png), nil
}
