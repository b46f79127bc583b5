package requests

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"labhive/dispatch"
	"labhive/utils"

	"github.com/julienschmidt/httprouter"
)

type createRequestPayload struct {
	UserID     string   `json:"userId"`
	TestIDs    []string `json:"testids"`
	Quantities []int    `json:"quantities"`
	Location   struct {
		Longitude float64 `json:"longitude"`
		Latitude  float64 `json:"latitude"`
	} `json:"location"`
	PaymentMethod string `json:"paymentMethod"`
}

// CreateRequest runs the dispatch auction for a booking intent. The
// response is held open until the run reaches a terminal outcome, as the
// mobile app expects a booked collector or a definitive failure.
func CreateRequest(engine *dispatch.Engine) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var p createRequestPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": "Invalid payload"})
			return
		}

		intent := dispatch.Intent{
			UserID:     p.UserID,
			TestIDs:    p.TestIDs,
			Quantities: p.Quantities,
			Location: dispatch.Point{
				Longitude: p.Location.Longitude,
				Latitude:  p.Location.Latitude,
			},
			PaymentMethod: p.PaymentMethod,
		}

		res, err := engine.Dispatch(r.Context(), intent)
		if err != nil {
			respondDispatchError(w, err)
			return
		}

		utils.RespondWithJSON(w, http.StatusCreated, utils.M{
			"success":   true,
			"message":   "Collector booked successfully",
			"collector": res.Collector,
			"request":   res.Request,
		})
	}
}

func respondDispatchError(w http.ResponseWriter, err error) {
	var (
		verr *dispatch.ValidationError
		nerr *dispatch.NoCollectorError
		aerr *dispatch.AllRejectedError
	)
	switch {
	case errors.As(err, &verr):
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": verr.Error()})
	case errors.As(err, &nerr):
		utils.RespondWithJSON(w, http.StatusNotFound, utils.M{"success": false, "message": "No available collector found for selected tests"})
	case errors.As(err, &aerr):
		msg := "All collectors rejected the request"
		if aerr.Offers == 0 && aerr.Busy > 0 {
			msg = "All collectors are busy right now, please try again"
		}
		utils.RespondWithJSON(w, http.StatusBadRequest, utils.M{"success": false, "message": msg})
	default:
		log.Printf("dispatch failed: %v", err)
		utils.RespondWithJSON(w, http.StatusInternalServerError, utils.M{"success": false, "message": "Error booking collector"})
	}
}
