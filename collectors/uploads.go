package collectors

import (
	"context"
	"net/http"
	"time"

	"labhive/db"
	"labhive/filemgr"
	"labhive/models"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const certDir = "uploads/certificates"

// UploadProfileImage stores a profile picture and records its path.
func UploadProfileImage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Unable to parse form"})
		return
	}
	file, header, err := r.FormFile("profileImage")
	if err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "No image uploaded"})
		return
	}
	defer file.Close()

	if !utils.ValidateImageFileType(w, header) {
		return
	}

	path, err := filemgr.SaveImageWithThumb(file, header)
	if err != nil {
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Error during upload"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.CollectorCollection.FindOneAndUpdate(ctx,
		bson.M{"id": collectorID},
		bson.M{"$set": bson.M{"profileImage": path, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Collector
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":   true,
		"message":   "Image uploaded successfully",
		"collector": updated,
	})
}

// UploadCertificates accepts one or more certificate files and appends
// their paths to the collector record.
func UploadCertificates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	collectorID := ps.ByName("collectorId")

	if err := r.ParseMultipartForm(20 << 20); err != nil {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Unable to parse form"})
		return
	}
	headers := r.MultipartForm.File["certificates"]
	if len(headers) == 0 {
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "No certificates uploaded"})
		return
	}

	var paths []string
	for _, header := range headers {
		mimeType := header.Header.Get("Content-Type")
		if mimeType != "application/pdf" && !utils.SupportedImageTypes[mimeType] {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"message": "Unsupported certificate type: " + mimeType})
			return
		}
		file, err := header.Open()
		if err != nil {
			utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Error during upload"})
			return
		}
		path, err := filemgr.SaveUploadedFile(file, header, certDir)
		file.Close()
		if err != nil {
			utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"message": "Error during upload"})
			return
		}
		paths = append(paths, path)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res := db.CollectorCollection.FindOneAndUpdate(ctx,
		bson.M{"id": collectorID},
		bson.M{
			"$push": bson.M{"certificates": bson.M{"$each": paths}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var updated models.Collector
	if err := res.Decode(&updated); err != nil {
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"message": "Collector not found"})
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success":      true,
		"message":      "Certificates uploaded successfully",
		"certificates": updated.Certificates,
	})
}
