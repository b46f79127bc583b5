package requests

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"labhive/db"
	"labhive/models"

	"github.com/julienschmidt/httprouter"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
	"go.mongodb.org/mongo-driver/bson"
)

func hmacSecret() []byte {
	if s := os.Getenv("QR_HMAC_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("your-very-secret-key")
}

// qrPayload returns a signed payload string the collector's app verifies
// on arrival: requestID|collectorID|timestamp|signature.
func qrPayload(requestID, collectorID string) string {
	data := fmt.Sprintf("%s|%s|%d", requestID, collectorID, time.Now().Unix())
	h := hmac.New(sha256.New, hmacSecret())
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// RequestQR serves the visit-verification QR for a booked request.
func RequestQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("requestId")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req models.BookingRequest
	if err := db.RequestsCollection.FindOne(ctx, bson.M{"id": requestID}).Decode(&req); err != nil {
		http.Error(w, "Request not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(qrPayload(req.ID, req.CollectorID), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// ConfirmationPDF renders a booking confirmation with the visit QR for
// the requester to keep.
func ConfirmationPDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requestID := ps.ByName("requestId")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var req models.BookingRequest
	if err := db.RequestsCollection.FindOne(ctx, bson.M{"id": requestID}).Decode(&req); err != nil {
		http.Error(w, "Request not found", http.StatusNotFound)
		return
	}

	var user models.User
	_ = db.UserCollection.FindOne(ctx, bson.M{"id": req.UserID}).Decode(&user)
	var collector models.Collector
	_ = db.CollectorCollection.FindOne(ctx, bson.M{"id": req.CollectorID}).Decode(&collector)

	testNames := lookupNames(ctx, "tests", toSet(req.TestIDs))

	qrPNG, err := qrcode.Encode(qrPayload(req.ID, req.CollectorID), qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Request ID: %s", req.ID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", user.Name))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Collector: %s", collector.FullName))
	pdf.Ln(8)
	names := make([]string, 0, len(req.TestIDs))
	for _, id := range req.TestIDs {
		if n := testNames[id]; n != "" {
			names = append(names, n)
		}
	}
	pdf.Cell(0, 10, fmt.Sprintf("Tests: %s", strings.Join(names, ", ")))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Total Amount: %.2f", req.TotalAmount))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Status: %s", req.Status))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		http.Error(w, "Failed to generate PDF", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=booking-"+req.ID+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
